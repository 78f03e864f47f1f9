package store_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ttech-shop/internal/store"
)

func newRedisSessions(t *testing.T, ttl time.Duration) (*store.RedisSessions, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return store.NewRedisSessions(rdb, ttl), mr
}

func TestRedisSessions_CreateValidateInvalidate(t *testing.T) {
	s, _ := newRedisSessions(t, time.Hour)

	token, err := s.Create("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, ok, err := s.Validate(token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "user-1", uid)

	require.NoError(t, s.Invalidate(token))
	_, ok, err = s.Validate(token)
	require.NoError(t, err)
	assert.False(t, ok)

	// 重复登出幂等
	require.NoError(t, s.Invalidate(token))
}

func TestRedisSessions_TTLExpiry(t *testing.T) {
	s, mr := newRedisSessions(t, time.Minute)

	token, err := s.Create("user-1")
	require.NoError(t, err)

	_, ok, err := s.Validate(token)
	require.NoError(t, err)
	require.True(t, ok)

	// 过期交给 Redis 原生 TTL
	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Validate(token)
	require.NoError(t, err)
	assert.False(t, ok)
}
