package runtime

import (
	"context"
	"fmt"
	"io"
	"time"

	"prBot/internal/domain"
	"prBot/internal/infrastructure/config"
	"prBot/internal/infrastructure/persistence/postgres"
	"prBot/internal/infrastructure/persistence/redis"
	"prBot/internal/infrastructure/persistence/sqlite"
)

type usageStore interface {
	domain.UsageRecorder
	io.Closer
}

// openUsageStore opens the backend named by STATS_BACKEND.
func openUsageStore(ctx context.Context, cfg *config.Config) (usageStore, error) {
	switch cfg.StatsBackend {
	case config.StatsBackendPostgres:
		return postgres.NewUsageStore(ctx, postgres.Options{
			DSN:             cfg.Postgres.DSN(),
			MaxOpenConns:    4,
			ConnMaxLifetime: 30 * time.Minute,
		})
	case config.StatsBackendRedis:
		return redis.NewUsageStore(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case config.StatsBackendSQLite:
		return sqlite.NewUsageStore(cfg.DatabasePath)
	default:
		return nil, fmt.Errorf("unknown stats backend %q", cfg.StatsBackend)
	}
}
