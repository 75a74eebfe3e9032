package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var savedAt = time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)

func normalizeSession(rec SessionRecord) SessionRecord {
	rec.SavedAt = rec.SavedAt.UTC().Truncate(time.Second)
	return rec
}

func normalizeGames(recs []GameRecord) []GameRecord {
	out := make([]GameRecord, 0, len(recs))
	for _, rec := range recs {
		rec.EndedAt = rec.EndedAt.UTC().Truncate(time.Second)
		out = append(out, rec)
	}
	return out
}

func game(n int) GameRecord {
	return GameRecord{
		MatchID:          fmt.Sprintf("m-%d", n),
		OpponentUsername: "bob",
		Result:           "WIN",
		PlayerScore:      n,
		OpponentScore:    1,
		EndedAt:          savedAt.Add(time.Duration(n) * time.Minute),
	}
}

// exerciseStore runs the behavior every Store must share. s must be empty and
// keep a history of exactly 3 games.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.LoadSession(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	first := SessionRecord{SessionID: "s-1", UserID: "42", Username: "ann", Token: "tok", ExpiresAt: 99, SavedAt: savedAt}
	require.NoError(t, s.SaveSession(ctx, first))
	got, err := s.LoadSession(ctx)
	require.NoError(t, err)
	require.Equal(t, first, normalizeSession(got))

	second := first
	second.SessionID = "s-2"
	second.DisplayName = "Ann"
	require.NoError(t, s.SaveSession(ctx, second))
	got, err = s.LoadSession(ctx)
	require.NoError(t, err)
	require.Equal(t, second, normalizeSession(got))

	require.NoError(t, s.ClearSession(ctx))
	_, err = s.LoadSession(ctx)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.ClearSession(ctx), "clearing twice is fine")

	games, err := s.RecentGames(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, games)

	for i := 1; i <= 4; i++ {
		require.NoError(t, s.RecordGame(ctx, game(i)))
	}
	games, err = s.RecentGames(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []GameRecord{game(4), game(3), game(2)}, normalizeGames(games))

	games, err = s.RecentGames(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []GameRecord{game(4)}, normalizeGames(games))
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(3)
	exerciseStore(t, s)
	require.NoError(t, s.Close())
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "duel.db")
	ctx := context.Background()
	s, err := OpenSQLite(ctx, path, 3)
	require.NoError(t, err)
	exerciseStore(t, s)

	require.NoError(t, s.SaveSession(ctx, SessionRecord{SessionID: "keep", UserID: "1", Username: "ann", SavedAt: savedAt}))
	require.NoError(t, s.Close())

	// Reopening must not re-run migrations or lose data.
	s, err = OpenSQLite(ctx, path, 3)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.LoadSession(ctx)
	require.NoError(t, err)
	require.Equal(t, "keep", got.SessionID)

	games, err := s.RecentGames(ctx, 0)
	require.NoError(t, err)
	require.Len(t, games, 3)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Kind: KindSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Kind: KindSQLite})
	require.Error(t, err)

	_, err = Open(ctx, Options{Kind: "etcd"})
	require.ErrorContains(t, err, "unknown session store")
}
