package port

import (
	"context"

	"cryptofeed/internal/domain/model"
)

// SnapshotPublisher receives every snapshot after it has been stored.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, rows []model.TickerRecord) error
}
