package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool configures and returns a PostgreSQL connection pool.
func NewPostgresPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("database url is required")
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the wallet tables when they do not exist yet. The
// schema is small enough that idempotent DDL beats a migration tool here.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id            TEXT PRIMARY KEY,
			identity      TEXT NOT NULL UNIQUE,
			display_name  TEXT NOT NULL,
			kind          TEXT NOT NULL,
			password_hash BYTEA NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ledger_accounts (
			id      TEXT PRIMARY KEY,
			balance BIGINT NOT NULL CHECK (balance >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS ledger_transactions (
			id          BIGSERIAL PRIMARY KEY,
			sender_id   TEXT NOT NULL REFERENCES ledger_accounts(id),
			receiver_id TEXT NOT NULL REFERENCES ledger_accounts(id),
			amount      BIGINT NOT NULL CHECK (amount > 0),
			kind        TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS ledger_transactions_sender_idx ON ledger_transactions (sender_id)`,
		`CREATE INDEX IF NOT EXISTS ledger_transactions_receiver_idx ON ledger_transactions (receiver_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
