package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores keys in a kv_store table.
type PostgresBackend struct {
	db *pgxpool.Pool
}

// NewPostgresBackend constructs a PostgresBackend. Call EnsureSchema once
// before first use.
func NewPostgresBackend(db *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the kv_store table if it does not exist.
func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS kv_store (
		   key        TEXT PRIMARY KEY,
		   value      BYTEA NOT NULL,
		   updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		 )`,
	)
	if err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

// Get implements Backend.
func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Update implements Backend.
//
// The row may not exist yet, so a row lock alone cannot serialise the first
// writers. A transaction-scoped advisory lock on the key covers that case;
// SELECT … FOR UPDATE then pins the row for the rest of the transaction.
func (p *PostgresBackend) Update(ctx context.Context, key string, fn func([]byte, bool) ([]byte, error)) (err error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock key: %w", err)
	}

	var cur []byte
	found := true
	err = tx.QueryRow(ctx,
		`SELECT value FROM kv_store WHERE key = $1 FOR UPDATE`,
		key,
	).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		found, err = false, nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}

	next, err := fn(cur, found)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, next,
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
