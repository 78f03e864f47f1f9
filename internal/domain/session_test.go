package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ttech-shop/internal/domain"
)

// 过期边界：expiresAt 前一刻有效，到点即失效
func TestSession_ExpiredBoundary(t *testing.T) {
	exp := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s := domain.Session{ID: "tok", UserID: "u1", ExpiresAt: exp}

	assert.False(t, s.Expired(exp.Add(-time.Nanosecond)))
	assert.True(t, s.Expired(exp))
	assert.True(t, s.Expired(exp.Add(time.Nanosecond)))
}
