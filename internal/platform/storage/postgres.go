package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"emprec/internal/platform/db"
)

// Postgres stores items as rows of a key/value table.
type Postgres struct {
	pool    *pgxpool.Pool
	table   string
	timeout time.Duration
}

// NewPostgres creates the table when missing and returns the backend.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, table string, timeout time.Duration) (*Postgres, error) {
	if table == "" {
		return nil, fmt.Errorf("%w: empty table name", ErrUnavailable)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ident := pgx.Identifier{table}.Sanitize()
	migrations := []db.Migration{{
		Version: "storage_0001_" + table,
		SQL: `CREATE TABLE IF NOT EXISTS ` + ident + ` (
      key TEXT PRIMARY KEY,
      value TEXT NOT NULL,
      updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	}}
	if err := db.Migrate(ctx, pool, migrations); err != nil {
		return nil, fmt.Errorf("prepare storage table: %w", err)
	}
	return &Postgres{pool: pool, table: ident, timeout: timeout}, nil
}

func (p *Postgres) GetItem(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM `+p.table+` WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (p *Postgres) SetItem(key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	_, err := p.pool.Exec(ctx, `
    INSERT INTO `+p.table+` (key, value, updated_at)
    VALUES ($1, $2, now())
    ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
  `, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) RemoveItem(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if _, err := p.pool.Exec(ctx, `DELETE FROM `+p.table+` WHERE key = $1`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
