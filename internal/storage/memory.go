package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	session *SessionRecord
	games   []GameRecord
	limit   int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore keeping up to limit games.
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryStore{limit: limit}
}

func (m *MemoryStore) SaveSession(_ context.Context, rec SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &rec
	return nil
}

func (m *MemoryStore) LoadSession(context.Context) (SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return SessionRecord{}, ErrNotFound
	}
	return *m.session, nil
}

func (m *MemoryStore) ClearSession(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *MemoryStore) RecordGame(_ context.Context, rec GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games = append(m.games, rec)
	if over := len(m.games) - m.limit; over > 0 {
		m.games = append([]GameRecord(nil), m.games[over:]...)
	}
	return nil
}

func (m *MemoryStore) RecentGames(_ context.Context, limit int) ([]GameRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit = clampLimit(limit, len(m.games))
	out := make([]GameRecord, 0, limit)
	for i := len(m.games) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.games[i])
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
