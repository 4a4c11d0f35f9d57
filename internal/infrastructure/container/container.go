package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"cryptofeed/internal/application/port"
	"cryptofeed/internal/infrastructure/config"
	"cryptofeed/internal/infrastructure/storage"
	pgrepo "cryptofeed/internal/infrastructure/storage/postgres"
	redisrepo "cryptofeed/internal/infrastructure/storage/redis"
	sqliterepo "cryptofeed/internal/infrastructure/storage/sqlite"
)

// Container 持有刷新任务与 HTTP 处理器共享的进程级资源
type Container struct {
	cfg         *config.Config
	store       port.SnapshotStore
	redisRepo   *redisrepo.Repo
	closeOnce   sync.Once
	closerChain []func() error
}

// New 创建快照存储，启用时创建 Redis 镜像
// 存储连接是惰性的，可达性由 EnsureSchema 和 Ping 报告
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		cfg:         cfg,
		closerChain: make([]func() error, 0),
	}

	if err := c.initStore(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("store init failed: %w", err)
	}

	if cfg.Storage.Redis.Enabled {
		if err := c.initRedis(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("redis init failed: %w", err)
		}
	}

	return c, nil
}

func (c *Container) initStore() error {
	switch c.cfg.Storage.Driver {
	case config.DriverPostgres:
		repo, err := pgrepo.New(c.cfg.Storage.Postgres.DSN, pgrepo.Options{
			MaxOpenConns: c.cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns: c.cfg.Storage.Postgres.MaxIdleConns,
		})
		if err != nil {
			return err
		}
		c.store = repo

	case config.DriverSQLite:
		repo, err := sqliterepo.New(c.cfg.Storage.SQLite.Path)
		if err != nil {
			return err
		}
		c.store = repo

	case config.DriverMemory:
		c.store = storage.NewInMemoryStore()

	default:
		return fmt.Errorf("unsupported storage driver %q", c.cfg.Storage.Driver)
	}

	store := c.store
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Str("driver", c.cfg.Storage.Driver).Msg("closing snapshot store")
		return store.Close()
	})

	log.Info().
		Str("driver", c.cfg.Storage.Driver).
		Msg("snapshot store initialized")

	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     c.cfg.Storage.Redis.Addr,
		Password: c.cfg.Storage.Redis.Password,
		DB:       c.cfg.Storage.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(c.cfg.Storage.Redis.TTLSeconds) * time.Second
	c.redisRepo = redisrepo.New(rdb, c.cfg.Storage.Redis.Prefix, ttl, c.cfg.Storage.Redis.Channel)

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", c.cfg.Storage.Redis.Addr).
		Int("db", c.cfg.Storage.Redis.DB).
		Msg("redis initialized")

	return nil
}

func (c *Container) Store() port.SnapshotStore {
	return c.store
}

// RedisRepo 未启用 Redis 时为 nil
func (c *Container) RedisRepo() *redisrepo.Repo {
	return c.redisRepo
}

// Close 按创建的逆序释放资源
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if e := c.closerChain[i](); e != nil {
				log.Error().Err(e).Msg("error closing resource")
				if err == nil {
					err = e
				}
			}
		}
		log.Info().Msg("container closed")
	})
	return err
}
