package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"cryptofeed/internal/application/port"
	"cryptofeed/internal/domain"
	"cryptofeed/internal/domain/model"
)

// Decimals are kept as TEXT; NUMERIC affinity would coerce them to REAL.
const (
	schema = `
CREATE TABLE IF NOT EXISTS crypto_data (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  last TEXT NOT NULL,
  buy TEXT NOT NULL,
  sell TEXT NOT NULL,
  volume TEXT NOT NULL,
  base_unit TEXT NOT NULL
);`
	insertRow = `INSERT INTO crypto_data (name, last, buy, sell, volume, base_unit) VALUES (?, ?, ?, ?, ?, ?)`
	selectAll = `SELECT id, name, last, buy, sell, volume, base_unit FROM crypto_data`
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	return &Repo{db: db}, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: create crypto_data: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Repo) ReplaceAll(ctx context.Context, rows []model.TickerRecord) (int, error) {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM crypto_data`); err != nil {
		return 0, fmt.Errorf("%w: clear crypto_data: %v", domain.ErrStoreUnavailable, err)
	}

	inserted := 0
	var errs []error
	for i, row := range rows {
		_, err := r.db.ExecContext(ctx, insertRow,
			row.Name, row.Last.String(), row.Buy.String(), row.Sell.String(), row.Volume.String(), row.BaseUnit)
		if err != nil {
			errs = append(errs, &domain.RowInsertError{Index: i, Name: row.Name, Err: err})
			continue
		}
		inserted++
	}
	return inserted, errors.Join(errs...)
}

func (r *Repo) ReadAll(ctx context.Context) ([]model.TickerRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectAll)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []model.TickerRecord
	for rows.Next() {
		var rec model.TickerRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Last, &rec.Buy, &rec.Sell, &rec.Volume, &rec.BaseUnit); err != nil {
			return nil, fmt.Errorf("%w: scan crypto_data: %v", domain.ErrStoreUnavailable, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return out, nil
}

var _ port.SnapshotStore = (*Repo)(nil)
