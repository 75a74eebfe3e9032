package session

import (
	"context"
	"time"

	"github.com/levanminh04/Network-Programming/internal/actor"
	"github.com/levanminh04/Network-Programming/internal/auth"
	"github.com/levanminh04/Network-Programming/internal/game"
	"github.com/levanminh04/Network-Programming/internal/storage"
)

// storePersister adapts a storage.Store to game.Persister.
type storePersister struct {
	store storage.Store
	clock actor.Clock
}

var _ game.Persister = storePersister{}

func (p storePersister) SaveSession(ctx context.Context, s game.Session) error {
	return p.store.SaveSession(ctx, sessionRecord(s, p.clock.Now()))
}

func (p storePersister) ClearSession(ctx context.Context) error {
	return p.store.ClearSession(ctx)
}

func (p storePersister) RecordGame(ctx context.Context, rec game.GameRecord, endedAt time.Time) error {
	return p.store.RecordGame(ctx, storage.GameRecord{
		MatchID:          rec.MatchID,
		OpponentUsername: rec.OpponentUsername,
		Result:           string(rec.Result),
		PlayerScore:      rec.PlayerScore,
		OpponentScore:    rec.OpponentScore,
		Forfeited:        rec.Forfeited,
		EndedAt:          endedAt,
	})
}

func sessionRecord(s game.Session, now time.Time) storage.SessionRecord {
	expiresAt := s.User.ExpiresAt
	if s.User.Token != "" {
		if exp, err := auth.TokenExpiry(s.User.Token); err == nil {
			expiresAt = exp.UnixMilli()
		}
	}
	return storage.SessionRecord{
		SessionID:   s.ID,
		UserID:      s.User.ID,
		Username:    s.User.Username,
		DisplayName: s.User.DisplayName,
		Token:       s.User.Token,
		ExpiresAt:   expiresAt,
		SavedAt:     now,
	}
}

func sessionFromRecord(rec storage.SessionRecord) game.Session {
	return game.Session{
		ID: rec.SessionID,
		User: game.User{
			ID:          rec.UserID,
			Username:    rec.Username,
			DisplayName: rec.DisplayName,
			Token:       rec.Token,
			ExpiresAt:   rec.ExpiresAt,
		},
	}
}
