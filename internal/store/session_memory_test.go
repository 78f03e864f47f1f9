package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ttech-shop/internal/store"
)

func TestMemorySessions_CreateValidateInvalidate(t *testing.T) {
	s := store.NewMemorySessions(7 * 24 * time.Hour)

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

	// 未知 token：ok=false 而不是 error
	_, ok, err = s.Validate("no-such-token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemorySessions_LazyExpiry(t *testing.T) {
	// 负 TTL：签发即过期
	s := store.NewMemorySessions(-time.Hour)

	token, err := s.Create("user-1")
	require.NoError(t, err)

	_, ok, err := s.Validate(token)
	require.NoError(t, err)
	assert.False(t, ok)

	// 首次校验已惰性清除，再清理扫不到
	assert.Equal(t, 0, s.CleanupExpired())
}

func TestMemorySessions_CleanupExpired(t *testing.T) {
	expired := store.NewMemorySessions(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := expired.Create("user-1")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, expired.CleanupExpired())

	live := store.NewMemorySessions(time.Hour)
	tok, err := live.Create("user-2")
	require.NoError(t, err)
	assert.Equal(t, 0, live.CleanupExpired())
	_, ok, err := live.Validate(tok)
	require.NoError(t, err)
	assert.True(t, ok)
}
