// Package postgres stores command usage counters in PostgreSQL through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Options struct {
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type UsageStore struct {
	db *sql.DB
}

func NewUsageStore(ctx context.Context, opts Options) (*UsageStore, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("postgres: connection source is empty")
	}

	db, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return NewUsageStoreFromDB(ctx, db)
}

// NewUsageStoreFromDB wraps an already opened pool and ensures the table exists.
func NewUsageStoreFromDB(ctx context.Context, db *sql.DB) (*UsageStore, error) {
	const schema = `
CREATE TABLE IF NOT EXISTS command_usage (
	user_id TEXT NOT NULL,
	command TEXT NOT NULL,
	count BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, command)
);`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("postgres: migrate command_usage: %w", err)
	}
	return &UsageStore{db: db}, nil
}

func (s *UsageStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *UsageStore) Increment(ctx context.Context, userID, command string, delta int) error {
	userID = strings.TrimSpace(userID)
	command = strings.ToLower(strings.TrimSpace(command))
	if userID == "" || command == "" {
		return fmt.Errorf("postgres: increment: empty user or command")
	}

	const stmt = `
INSERT INTO command_usage (user_id, command, count, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, command) DO UPDATE SET
	count = command_usage.count + EXCLUDED.count,
	updated_at = EXCLUDED.updated_at;
`

	if _, err := s.db.ExecContext(ctx, stmt, userID, command, delta, time.Now().UTC()); err != nil {
		return fmt.Errorf("postgres: increment usage: %w", err)
	}
	return nil
}
