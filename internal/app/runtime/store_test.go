package runtime

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prBot/internal/infrastructure/config"
)

func TestOpenUsageStoreSQLite(t *testing.T) {
	cfg := &config.Config{
		StatsBackend: config.StatsBackendSQLite,
		DatabasePath: filepath.Join(t.TempDir(), "usage.db"),
	}

	store, err := openUsageStore(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Increment(context.Background(), "42", "ping", 1))
}

func TestOpenUsageStoreUnknownBackend(t *testing.T) {
	_, err := openUsageStore(context.Background(), &config.Config{StatsBackend: "mongo"})
	assert.ErrorContains(t, err, "mongo")
}

func TestOpenUsageStoreRedisNeedsAddr(t *testing.T) {
	cfg := &config.Config{StatsBackend: config.StatsBackendRedis}
	_, err := openUsageStore(context.Background(), cfg)
	assert.Error(t, err)
}
