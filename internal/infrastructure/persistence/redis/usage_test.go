package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageKey(t *testing.T) {
	assert.Equal(t, "prbot:usage:42", UsageKey("42"))
}

func TestIncrementRejectsEmptyKey(t *testing.T) {
	store := &UsageStore{}

	assert.Error(t, store.Increment(context.Background(), "", "chart", 1))
	assert.Error(t, store.Increment(context.Background(), "1", "", 1))
}

func TestNewUsageStoreNeedsAddress(t *testing.T) {
	_, err := NewUsageStore(context.Background(), Options{})
	assert.Error(t, err)
}

func TestIncrementAccumulatesInUserHash(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewUsageStoreFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Increment(ctx, "42", "Chart", 1))
	require.NoError(t, store.Increment(ctx, " 42 ", "chart", 1))
	require.NoError(t, store.Increment(ctx, "42", "ping", 3))

	assert.Equal(t, "2", mr.HGet(UsageKey("42"), "chart"))
	assert.Equal(t, "3", mr.HGet(UsageKey("42"), "ping"))
}

func TestNewUsageStorePingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewUsageStore(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, store.Increment(context.Background(), "7", "ping", 1))
	require.NoError(t, store.Close())
	assert.Equal(t, "1", mr.HGet(UsageKey("7"), "ping"))
}
