package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"cryptofeed/internal/domain"
	"cryptofeed/internal/domain/model"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	return repo
}

func record(name, last string) model.TickerRecord {
	return model.TickerRecord{
		Name:     name,
		Last:     decimal.RequireFromString(last),
		Buy:      decimal.RequireFromString("4999000"),
		Sell:     decimal.RequireFromString("5001000"),
		Volume:   decimal.RequireFromString("120.5"),
		BaseUnit: "inr",
	}
}

func TestSQLiteRepoEnsureSchemaIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second EnsureSchema failed: %v", err)
	}
}

func TestSQLiteRepoReadAllEmpty(t *testing.T) {
	repo := newTestRepo(t)

	rows, err := repo.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestSQLiteRepoReplaceAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := []model.TickerRecord{record("btcinr", "5000000"), record("ethinr", "250000.75")}
	n, err := repo.ReplaceAll(ctx, first)
	if err != nil || n != 2 {
		t.Fatalf("ReplaceAll: n=%d err=%v", n, err)
	}

	rows, err := repo.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "btcinr" || !rows[0].Last.Equal(decimal.NewFromInt(5000000)) {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if !rows[1].Last.Equal(decimal.RequireFromString("250000.75")) {
		t.Errorf("decimal precision lost: %s", rows[1].Last)
	}
	if rows[0].BaseUnit != "inr" || !rows[0].Volume.Equal(decimal.RequireFromString("120.5")) {
		t.Errorf("unexpected fields: %+v", rows[0])
	}

	second := []model.TickerRecord{record("xrpinr", "45.2")}
	if _, err := repo.ReplaceAll(ctx, second); err != nil {
		t.Fatalf("second ReplaceAll failed: %v", err)
	}

	rows, _ = repo.ReadAll(ctx)
	if len(rows) != 1 || rows[0].Name != "xrpinr" {
		t.Fatalf("expected only xrpinr after replace, got %+v", rows)
	}
	if rows[0].ID <= 2 {
		t.Errorf("expected a fresh surrogate id, got %d", rows[0].ID)
	}
}

func TestSQLiteRepoStoreUnavailable(t *testing.T) {
	repo := newTestRepo(t)
	_ = repo.Close()
	ctx := context.Background()

	if _, err := repo.ReadAll(ctx); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("ReadAll: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := repo.ReplaceAll(ctx, nil); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("ReplaceAll: expected ErrStoreUnavailable, got %v", err)
	}
	if err := repo.Ping(ctx); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("Ping: expected ErrStoreUnavailable, got %v", err)
	}
}
