package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"cryptofeed/internal/application/port"
	"cryptofeed/internal/domain"
	"cryptofeed/internal/domain/model"
)

const (
	schema = `
CREATE TABLE IF NOT EXISTS crypto_data (
  id SERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  last NUMERIC NOT NULL,
  buy NUMERIC NOT NULL,
  sell NUMERIC NOT NULL,
  volume NUMERIC NOT NULL,
  base_unit TEXT NOT NULL
);`
	insertRow = `INSERT INTO crypto_data (name, last, buy, sell, volume, base_unit) VALUES ($1, $2, $3, $4, $5, $6)`
	selectAll = `SELECT id, name, last, buy, sell, volume, base_unit FROM crypto_data`
)

type Repo struct {
	db *sql.DB
}

type Options struct {
	MaxOpenConns int
	MaxIdleConns int
}

// New opens a pooled handle. No connection is made until first use, so an
// unreachable database surfaces on EnsureSchema or the first query.
func New(dsn string, opts Options) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)

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
		_, err := r.db.ExecContext(ctx, insertRow, row.Name, row.Last, row.Buy, row.Sell, row.Volume, row.BaseUnit)
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
