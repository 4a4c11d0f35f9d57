package port

import (
	"context"

	"cryptofeed/internal/domain/model"
)

// SnapshotReader is the read side of the snapshot store.
type SnapshotReader interface {
	// ReadAll returns every stored row in storage order.
	ReadAll(ctx context.Context) ([]model.TickerRecord, error)

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error
}

// SnapshotStore holds the current top-N ticker snapshot.
type SnapshotStore interface {
	SnapshotReader

	// EnsureSchema creates the backing table if it does not exist.
	EnsureSchema(ctx context.Context) error

	// ReplaceAll deletes every row, then inserts rows one at a time in order.
	// It is not atomic. A failed delete aborts with domain.ErrStoreUnavailable;
	// failed inserts are skipped and reported as joined *domain.RowInsertError
	// values. The count is the number of rows inserted.
	ReplaceAll(ctx context.Context, rows []model.TickerRecord) (int, error)

	Close() error
}
