package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	App struct {
		Name string `toml:"name"`
	} `toml:"app"`

	HTTP struct {
		Host            string   `toml:"host"`
		Port            string   `toml:"port"`
		ShutdownTimeout int      `toml:"shutdown_timeout_sec"`
		CORSOrigins     []string `toml:"cors_origins"`
	} `toml:"http"`

	Source struct {
		URL        string `toml:"url"`
		TimeoutSec int    `toml:"timeout_sec"`
	} `toml:"source"`

	Refresh struct {
		IntervalSec   int  `toml:"interval_sec"`
		TopN          int  `toml:"top_n"`
		SkipIfRunning bool `toml:"skip_if_running"`
	} `toml:"refresh"`

	Storage struct {
		Driver string `toml:"driver"`

		Postgres struct {
			DSN          string `toml:"dsn"`
			MaxOpenConns int    `toml:"max_open_conns"`
			MaxIdleConns int    `toml:"max_idle_conns"`
		} `toml:"postgres"`

		SQLite struct {
			Path string `toml:"path"`
		} `toml:"sqlite"`

		Redis struct {
			Enabled    bool   `toml:"enabled"`
			Addr       string `toml:"addr"`
			Password   string `toml:"password"`
			DB         int    `toml:"db"`
			Prefix     string `toml:"prefix"`
			TTLSeconds int    `toml:"ttl_seconds"`
			Channel    string `toml:"channel"`
		} `toml:"redis"`
	} `toml:"storage"`

	Websocket struct {
		Enabled bool `toml:"enabled"`
	} `toml:"websocket"`

	Log struct {
		Level  string `toml:"level"`
		Pretty bool   `toml:"pretty"`
	} `toml:"log"`
}

// Load reads the toml file at path (a missing file means defaults only),
// loads .env into the environment, applies env overrides and defaults,
// and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if strings.TrimSpace(path) != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := lookup("PORT"); ok {
		cfg.HTTP.Port = v
	}
	if v, ok := lookup("POSTGRESQL_URL"); ok {
		cfg.Storage.Postgres.DSN = v
	}
	if v, ok := lookup("CRYPTOFEED_STORAGE_DRIVER"); ok {
		cfg.Storage.Driver = v
	}
	if v, ok := lookup("CRYPTOFEED_SQLITE_PATH"); ok {
		cfg.Storage.SQLite.Path = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok {
		cfg.Storage.Redis.Addr = v
		cfg.Storage.Redis.Enabled = true
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "cryptofeed"
	}
	if cfg.HTTP.Port == "" {
		cfg.HTTP.Port = "3000"
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 10
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"*"}
	}
	if cfg.Source.TimeoutSec <= 0 {
		cfg.Source.TimeoutSec = 10
	}
	if cfg.Refresh.IntervalSec <= 0 {
		cfg.Refresh.IntervalSec = 60
	}
	if cfg.Refresh.TopN <= 0 {
		cfg.Refresh.TopN = 10
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverPostgres
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "data/cryptofeed.db"
	}
	if cfg.Storage.Redis.Addr == "" {
		cfg.Storage.Redis.Addr = "localhost:6379"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "cryptofeed"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func validate(cfg *Config) error {
	port, err := strconv.Atoi(cfg.HTTP.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("http.port %q is not a valid port", cfg.HTTP.Port)
	}

	switch cfg.Storage.Driver {
	case DriverPostgres:
		if strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
			return errors.New("storage.postgres.dsn empty (set POSTGRESQL_URL)")
		}
	case DriverSQLite:
		if strings.TrimSpace(cfg.Storage.SQLite.Path) == "" {
			return errors.New("storage.sqlite.path empty")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q unsupported", cfg.Storage.Driver)
	}
	return nil
}
