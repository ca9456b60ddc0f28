package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type UsageStore struct {
	db *sql.DB
}

func NewUsageStore(dbPath string) (*UsageStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite: empty db path")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: creating dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &UsageStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS command_usage (
	user_id TEXT NOT NULL,
	command TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, command)
);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: migrate command_usage: %w", err)
	}
	return nil
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
		return fmt.Errorf("sqlite: increment: empty user or command")
	}

	const stmt = `
INSERT INTO command_usage (user_id, command, count, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id, command) DO UPDATE SET
	count = command_usage.count + excluded.count,
	updated_at = excluded.updated_at;
`

	if _, err := s.db.ExecContext(ctx, stmt, userID, command, delta, time.Now().UTC()); err != nil {
		return fmt.Errorf("sqlite: increment usage: %w", err)
	}
	return nil
}

// Count is used by operators and tests; the command core never reads it.
func (s *UsageStore) Count(ctx context.Context, userID, command string) (int, error) {
	const query = `
SELECT count
FROM command_usage
WHERE user_id = ? AND command = ?
LIMIT 1;
`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, strings.ToLower(command)).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("sqlite: get usage: %w", err)
	}
	return count, nil
}
