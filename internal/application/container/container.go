package container

import (
	"cryptofeed/internal/application/port"
	"cryptofeed/internal/application/service"
)

// Container wires the application services over their ports.
type Container struct {
	source    port.TickerSource
	store     port.SnapshotStore
	publisher port.SnapshotPublisher
	topN      int

	refreshService  *service.RefreshService
	snapshotService *service.SnapshotService
}

func New(source port.TickerSource, store port.SnapshotStore, publisher port.SnapshotPublisher, topN int) *Container {
	return &Container{
		source:    source,
		store:     store,
		publisher: publisher,
		topN:      topN,
	}
}

func (c *Container) RefreshService() *service.RefreshService {
	if c.refreshService == nil {
		c.refreshService = service.NewRefreshService(c.source, c.store, c.publisher, c.topN)
	}
	return c.refreshService
}

func (c *Container) SnapshotService() *service.SnapshotService {
	if c.snapshotService == nil {
		c.snapshotService = service.NewSnapshotService(c.store)
	}
	return c.snapshotService
}
