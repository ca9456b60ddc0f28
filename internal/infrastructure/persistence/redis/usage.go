// Package redis keeps command usage counters in one hash per user.
package redis

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "prbot:usage:"

type Options struct {
	Addr     string
	Password string
	DB       int
}

type UsageStore struct {
	client goredis.UniversalClient
}

func NewUsageStore(ctx context.Context, opts Options) (*UsageStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis: empty address")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &UsageStore{client: client}, nil
}

func NewUsageStoreFromClient(client goredis.UniversalClient) *UsageStore {
	return &UsageStore{client: client}
}

func UsageKey(userID string) string {
	return keyPrefix + userID
}

func (s *UsageStore) Increment(ctx context.Context, userID, command string, delta int) error {
	userID = strings.TrimSpace(userID)
	command = strings.ToLower(strings.TrimSpace(command))
	if userID == "" || command == "" {
		return fmt.Errorf("redis: increment: empty user or command")
	}
	if err := s.client.HIncrBy(ctx, UsageKey(userID), command, int64(delta)).Err(); err != nil {
		return fmt.Errorf("redis: increment usage: %w", err)
	}
	return nil
}

func (s *UsageStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
