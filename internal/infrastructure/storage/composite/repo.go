package composite

import (
	"context"

	"cryptofeed/internal/application/port"
	"cryptofeed/internal/domain/model"
)

// Publisher fans a snapshot out to several publishers.
type Publisher struct {
	pubs []port.SnapshotPublisher
}

func New(pubs ...port.SnapshotPublisher) *Publisher {
	// nil publishers are allowed; filter in constructor
	out := make([]port.SnapshotPublisher, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	return &Publisher{pubs: out}
}

func (p *Publisher) Len() int { return len(p.pubs) }

// PublishSnapshot calls every publisher and returns the first error.
func (p *Publisher) PublishSnapshot(ctx context.Context, rows []model.TickerRecord) error {
	var firstErr error
	for _, pub := range p.pubs {
		if err := pub.PublishSnapshot(ctx, rows); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.SnapshotPublisher = (*Publisher)(nil)
