package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "POSTGRESQL_URL", "CRYPTOFEED_STORAGE_DRIVER", "CRYPTOFEED_SQLITE_PATH", "REDIS_ADDR", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRESQL_URL", "postgres://u:p@localhost:5432/crypto")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Port != "3000" {
		t.Errorf("expected default port 3000, got %s", cfg.HTTP.Port)
	}
	if cfg.Refresh.IntervalSec != 60 || cfg.Refresh.TopN != 10 {
		t.Errorf("unexpected refresh defaults: %+v", cfg.Refresh)
	}
	if cfg.Storage.Driver != DriverPostgres {
		t.Errorf("expected postgres driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Storage.Postgres.DSN != "postgres://u:p@localhost:5432/crypto" {
		t.Errorf("dsn not taken from env: %s", cfg.Storage.Postgres.DSN)
	}
	if cfg.Refresh.SkipIfRunning {
		t.Errorf("overlap guard must be off by default")
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")

	path := writeConfig(t, `
[http]
port = "9000"

[refresh]
interval_sec = 30
top_n = 5

[storage]
driver = "SQLite"

[storage.sqlite]
path = "/tmp/x.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != "8081" {
		t.Errorf("env PORT should win, got %s", cfg.HTTP.Port)
	}
	if cfg.Refresh.IntervalSec != 30 || cfg.Refresh.TopN != 5 {
		t.Errorf("unexpected refresh config: %+v", cfg.Refresh)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.SQLite.Path != "/tmp/x.db" {
		t.Errorf("unexpected storage config: %+v", cfg.Storage)
	}
}

func TestLoadRedisFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CRYPTOFEED_STORAGE_DRIVER", "memory")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Storage.Redis.Enabled || cfg.Storage.Redis.Addr != "redis:6379" {
		t.Errorf("unexpected redis config: %+v", cfg.Storage.Redis)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing dsn", nil, "storage.postgres.dsn"},
		{"bad port", map[string]string{"CRYPTOFEED_STORAGE_DRIVER": "memory", "PORT": "http"}, "http.port"},
		{"unknown driver", map[string]string{"CRYPTOFEED_STORAGE_DRIVER": "mysql"}, "storage.driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[http\nport = ")
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}
