package service

import (
	"context"
	"fmt"

	"cryptofeed/internal/application/port"
	"cryptofeed/internal/domain/model"
)

// SnapshotService serves the current snapshot to readers.
type SnapshotService struct {
	store port.SnapshotReader
}

func NewSnapshotService(store port.SnapshotReader) *SnapshotService {
	return &SnapshotService{store: store}
}

// Current returns every stored row; an empty store yields an empty, non-nil slice.
func (s *SnapshotService) Current(ctx context.Context) ([]model.TickerRecord, error) {
	rows, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if rows == nil {
		rows = []model.TickerRecord{}
	}
	return rows, nil
}

// Healthy reports whether the store answers a ping.
func (s *SnapshotService) Healthy(ctx context.Context) error {
	return s.store.Ping(ctx)
}
