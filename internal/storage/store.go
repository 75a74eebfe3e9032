// Package storage persists the local player's session and finished games so
// a restarted client can resume without logging in again.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no session is stored.
var ErrNotFound = errors.New("not found")

// Kinds accepted by Open.
const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
	KindRedis  = "redis"
)

// SessionRecord is a persisted login.
type SessionRecord struct {
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName,omitempty"`
	Token       string    `json:"token,omitempty"`
	ExpiresAt   int64     `json:"expiresAt,omitempty"`
	SavedAt     time.Time `json:"savedAt"`
}

// GameRecord is one finished game from the local player's seat.
type GameRecord struct {
	MatchID          string    `json:"matchId"`
	OpponentUsername string    `json:"opponentUsername,omitempty"`
	Result           string    `json:"result"`
	PlayerScore      int       `json:"playerScore"`
	OpponentScore    int       `json:"opponentScore"`
	Forfeited        bool      `json:"forfeited,omitempty"`
	EndedAt          time.Time `json:"endedAt"`
}

// Store holds at most one session and an append-only game history.
type Store interface {
	SaveSession(ctx context.Context, rec SessionRecord) error
	// LoadSession returns ErrNotFound when nothing is stored.
	LoadSession(ctx context.Context) (SessionRecord, error)
	ClearSession(ctx context.Context) error

	RecordGame(ctx context.Context, rec GameRecord) error
	// RecentGames returns up to limit games, newest first.
	RecentGames(ctx context.Context, limit int) ([]GameRecord, error)

	Close() error
}

// Options selects and configures a Store.
type Options struct {
	Kind string

	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SessionTTL bounds how long a stored session lives in stores that
	// support expiry.
	SessionTTL time.Duration
	// HistoryLimit caps the stored game history. Zero means the default.
	HistoryLimit int
}

// DefaultHistoryLimit is the number of games kept when Options.HistoryLimit is
// unset.
const DefaultHistoryLimit = 100

// Open returns the Store named by opts.Kind.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	switch opts.Kind {
	case "", KindMemory:
		return NewMemoryStore(opts.HistoryLimit), nil
	case KindSQLite:
		return OpenSQLite(ctx, opts.SQLitePath, opts.HistoryLimit)
	case KindRedis:
		return OpenRedis(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown session store %q", opts.Kind)
	}
}

func clampLimit(limit, ceiling int) int {
	if limit <= 0 || limit > ceiling {
		return ceiling
	}
	return limit
}
