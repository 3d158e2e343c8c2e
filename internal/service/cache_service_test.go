package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRememberLoadsOnceThenHits(t *testing.T) {
	cache := NewCacheService(newMemoryCacheRepo(), NewMetricsService(), time.Minute, zap.NewNop(), true)
	loads := 0
	load := func(ctx context.Context) ([]string, error) {
		loads++
		return []string{"go", "rust"}, nil
	}

	value, hit, err := Remember(context.Background(), cache, "langs", 0, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"go", "rust"}, value)

	value, hit, err = Remember(context.Background(), cache, "langs", 0, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"go", "rust"}, value)
	assert.Equal(t, 1, loads)
}

func TestRememberDoesNotStoreFailures(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	_, _, err := Remember(context.Background(), cache, "langs", 0, func(ctx context.Context) ([]string, error) {
		return nil, errors.New("upstream down")
	})
	require.Error(t, err)

	var cached []string
	hit, err := cache.Get(context.Background(), "langs", &cached)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestNilCacheServiceAlwaysMisses(t *testing.T) {
	var cache *CacheService
	assert.False(t, cache.Enabled())
	require.NoError(t, cache.Set(context.Background(), "k", 1, 0))
	require.NoError(t, cache.Invalidate(context.Background(), "catalog:*"))

	value, hit, err := Remember(context.Background(), cache, "k", 0, func(ctx context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, value)
}
