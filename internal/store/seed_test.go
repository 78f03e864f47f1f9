package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ttech-shop/internal/domain"
	"ttech-shop/internal/store"
	"ttech-shop/pkg/utils"
)

func TestSeed(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, store.Seed(s, "Admin User", "admin@ttech.com", "admin123", zap.NewNop()))

	admin, ok, err := s.GetUserByEmail("admin@ttech.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	match, err := utils.CheckPassword("admin123", admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, match)

	products, err := s.ListProducts("")
	require.NoError(t, err)
	assert.Len(t, products, 6)
	for _, p := range products {
		assert.Equal(t, "GHS", p.Currency)
		assert.GreaterOrEqual(t, p.CountInStock, 0)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	s := store.NewMemoryStore()
	log := zap.NewNop()
	require.NoError(t, store.Seed(s, "Admin User", "admin@ttech.com", "admin123", log))
	require.NoError(t, store.Seed(s, "Admin User", "admin@ttech.com", "admin123", log))

	users, err := s.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1)
	products, err := s.ListProducts("")
	require.NoError(t, err)
	assert.Len(t, products, 6)
}
