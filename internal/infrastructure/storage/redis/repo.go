package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptofeed/internal/application/port"
	"cryptofeed/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// Repo mirrors every stored snapshot into redis for downstream consumers.
type Repo struct {
	rdb         *redis.Client
	prefix      string
	ttl         time.Duration
	keySnapshot string // prefix + ":snapshot"
	channel     string
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, channel string) *Repo {
	if strings.TrimSpace(prefix) == "" {
		prefix = "cryptofeed"
	}
	if strings.TrimSpace(channel) == "" {
		channel = prefix + ":snapshot:pub"
	}
	return &Repo{
		rdb:         rdb,
		prefix:      prefix,
		ttl:         ttl,
		keySnapshot: prefix + ":snapshot",
		channel:     channel,
	}
}

// PublishSnapshot stores the snapshot under the snapshot key and announces
// it on the pubsub channel.
func (r *Repo) PublishSnapshot(ctx context.Context, rows []model.TickerRecord) error {
	if rows == nil {
		rows = []model.TickerRecord{}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, r.keySnapshot, b, r.ttl)
	pipe.Publish(ctx, r.channel, b)
	_, err = pipe.Exec(ctx)
	return err
}

// LatestSnapshot returns the last mirrored snapshot, or nil if none is held.
func (r *Repo) LatestSnapshot(ctx context.Context) ([]model.TickerRecord, error) {
	b, err := r.rdb.Get(ctx, r.keySnapshot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []model.TickerRecord
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return rows, nil
}

func (r *Repo) Channel() string { return r.channel }

var _ port.SnapshotPublisher = (*Repo)(nil)
