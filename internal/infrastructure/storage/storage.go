package storage

import (
	"context"
	"sync"

	"cryptofeed/internal/application/port"
	"cryptofeed/internal/domain/model"
)

// InMemoryStore is a process-local snapshot store. Like the SQL backends it
// assigns increasing ids and keeps insertion order.
type InMemoryStore struct {
	mu     sync.RWMutex
	rows   []model.TickerRecord
	nextID int64
}

// NewInMemoryStore creates an empty in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) EnsureSchema(ctx context.Context) error { return nil }

func (s *InMemoryStore) ReplaceAll(ctx context.Context, rows []model.TickerRecord) (int, error) {
	s.mu.Lock()
	s.rows = s.rows[:0]
	s.mu.Unlock()

	for _, r := range rows {
		s.mu.Lock()
		s.nextID++
		r.ID = s.nextID
		s.rows = append(s.rows, r)
		s.mu.Unlock()
	}
	return len(rows), nil
}

func (s *InMemoryStore) ReadAll(ctx context.Context) ([]model.TickerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TickerRecord, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

func (s *InMemoryStore) Ping(ctx context.Context) error { return nil }

func (s *InMemoryStore) Close() error { return nil }

var _ port.SnapshotStore = (*InMemoryStore)(nil)
