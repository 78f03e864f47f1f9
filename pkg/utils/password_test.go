package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ttech-shop/pkg/utils"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := utils.HashPassword("admin123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "admin123", hash)

	ok, err := utils.CheckPassword("admin123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = utils.CheckPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := utils.HashPassword("same-input")
	require.NoError(t, err)
	h2, err := utils.HashPassword("same-input")
	require.NoError(t, err)
	// 加盐：同一明文两次哈希不同
	assert.NotEqual(t, h1, h2)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	ok, err := utils.CheckPassword("whatever", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.Error(t, err)
}
