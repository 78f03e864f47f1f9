package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ttech-shop/internal/core/cache"
)

func newCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewWithClient(rdb)
}

func TestGetOrLoadJSON(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"a", "b"}, nil
	}

	got, err := cache.GetOrLoadJSON[[]string](c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, loads)

	// 第二次命中缓存，不回源
	got, err = cache.GetOrLoadJSON[[]string](c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, loads)

	// 删键后重新回源
	c.Invalidate(ctx, "k")
	_, err = cache.GetOrLoadJSON[[]string](c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}
