package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcontainer "cryptofeed/internal/application/container"
	"cryptofeed/internal/application/port"
	"cryptofeed/internal/infrastructure/config"
	"cryptofeed/internal/infrastructure/container"
	"cryptofeed/internal/infrastructure/exchange/wazirx"
	"cryptofeed/internal/infrastructure/logger"
	"cryptofeed/internal/infrastructure/scheduler"
	"cryptofeed/internal/infrastructure/storage/composite"
	redisrepo "cryptofeed/internal/infrastructure/storage/redis"
	"cryptofeed/internal/infrastructure/websocket"
	"cryptofeed/internal/interfaces/httpapi"

	"github.com/rs/zerolog/log"
)

func main() {
	logger.Setup("info", true)

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("container initialization failed")
	}
	defer c.Close()

	store := c.Store()
	if err := store.EnsureSchema(ctx); err != nil {
		// keep serving; reads answer 500 until the database is back
		log.Error().Err(err).Msg("create table failed, continuing degraded")
	} else {
		log.Info().Msg("table crypto_data is ready")
	}

	var publishers []port.SnapshotPublisher
	if repo := c.RedisRepo(); repo != nil {
		publishers = append(publishers, repo)
		log.Info().Str("channel", repo.Channel()).Msg("mirroring snapshots to redis")
	}
	var hub *websocket.Hub
	if cfg.Websocket.Enabled {
		hub = websocket.NewHub()
		defer hub.Close()
		publishers = append(publishers, hub)
		seedHub(ctx, hub, c.RedisRepo())
	}
	fanout := composite.New(publishers...)

	source := wazirx.NewClient(cfg.Source.URL, time.Duration(cfg.Source.TimeoutSec)*time.Second)
	app := appcontainer.New(source, store, fanout, cfg.Refresh.TopN)

	deps := httpapi.RouterDeps{
		Snapshots:   app.SnapshotService(),
		CORSOrigins: cfg.HTTP.CORSOrigins,
	}
	if hub != nil {
		deps.Stream = hub
	}
	srv := httpapi.NewServer(net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port), httpapi.NewRouter(deps))
	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("http server exited")
			stop()
		}
	}()

	log.Info().
		Str("config", *configPath).
		Str("driver", cfg.Storage.Driver).
		Str("source", source.Name()).
		Int("top_n", cfg.Refresh.TopN).
		Int("interval_sec", cfg.Refresh.IntervalSec).
		Bool("redis", c.RedisRepo() != nil).
		Bool("websocket", hub != nil).
		Int("publishers", fanout.Len()).
		Msg("cryptofeed started")

	sched := scheduler.New(scheduler.Options{
		Interval:      time.Duration(cfg.Refresh.IntervalSec) * time.Second,
		SkipIfRunning: cfg.Refresh.SkipIfRunning,
	})
	sched.Start(ctx, "refresh-snapshot", func(ctx context.Context) {
		_, _ = app.RefreshService().Refresh(ctx)
	})

	<-ctx.Done()
	ev := log.Warn()
	if hub != nil {
		ev = ev.Int("ws_clients", hub.Clients())
	}
	ev.Msg("shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}

// seedHub hands the hub the snapshot last mirrored to redis, so clients
// connecting before the first refresh completes still get data.
func seedHub(ctx context.Context, hub *websocket.Hub, repo *redisrepo.Repo) {
	if repo == nil {
		return
	}
	rows, err := repo.LatestSnapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read mirrored snapshot failed")
		return
	}
	if rows == nil {
		return
	}
	if err := hub.PublishSnapshot(ctx, rows); err != nil {
		log.Warn().Err(err).Msg("seed websocket hub failed")
	}
}
