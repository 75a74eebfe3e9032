package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type migration struct {
	version string
	sql     string
}

// migrations are applied in order; each version runs once.
var migrations = []migration{
	{
		version: "001_initial",
		sql: `
CREATE TABLE sessions (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	session_id   TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	username     TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	token        TEXT NOT NULL DEFAULT '',
	expires_at   INTEGER NOT NULL DEFAULT 0,
	saved_at     DATETIME NOT NULL
);
CREATE TABLE games (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	match_id          TEXT NOT NULL,
	opponent_username TEXT NOT NULL DEFAULT '',
	result            TEXT NOT NULL,
	player_score      INTEGER NOT NULL,
	opponent_score    INTEGER NOT NULL,
	forfeited         INTEGER NOT NULL DEFAULT 0,
	ended_at          DATETIME NOT NULL
);
CREATE INDEX idx_games_ended_at ON games(ended_at);
`,
	},
}

// SQLiteStore persists to a SQLite database file.
type SQLiteStore struct {
	db    *sql.DB
	limit int
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string, historyLimit int) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db, limit: historyLimit}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check %s: %w", m.version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", m.version, err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveSession(ctx context.Context, rec SessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, session_id, user_id, username, display_name, token, expires_at, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			user_id = excluded.user_id,
			username = excluded.username,
			display_name = excluded.display_name,
			token = excluded.token,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at
	`, rec.SessionID, rec.UserID, rec.Username, rec.DisplayName, rec.Token, rec.ExpiresAt, rec.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadSession(ctx context.Context) (SessionRecord, error) {
	var rec SessionRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, user_id, username, display_name, token, expires_at, saved_at
		FROM sessions WHERE id = 1
	`).Scan(&rec.SessionID, &rec.UserID, &rec.Username, &rec.DisplayName, &rec.Token, &rec.ExpiresAt, &rec.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, ErrNotFound
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("load session: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = 1"); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordGame(ctx context.Context, rec GameRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (match_id, opponent_username, result, player_score, opponent_score, forfeited, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.MatchID, rec.OpponentUsername, rec.Result, rec.PlayerScore, rec.OpponentScore, rec.Forfeited, rec.EndedAt.UTC())
	if err != nil {
		return fmt.Errorf("record game: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM games WHERE id NOT IN (SELECT id FROM games ORDER BY id DESC LIMIT ?)
	`, s.limit)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) RecentGames(ctx context.Context, limit int) ([]GameRecord, error) {
	limit = clampLimit(limit, s.limit)
	rows, err := s.db.QueryContext(ctx, `
		SELECT match_id, opponent_username, result, player_score, opponent_score, forfeited, ended_at
		FROM games ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		var (
			rec     GameRecord
			endedAt time.Time
		)
		if err := rows.Scan(&rec.MatchID, &rec.OpponentUsername, &rec.Result, &rec.PlayerScore, &rec.OpponentScore, &rec.Forfeited, &endedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		rec.EndedAt = endedAt
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
