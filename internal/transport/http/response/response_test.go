package response_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"ttech-shop/internal/domain"
	"ttech-shop/internal/transport/http/response"
)

func TestFromError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.NewValidationError("bad input"), http.StatusBadRequest},
		{domain.NewAuthError("invalid email or password"), http.StatusUnauthorized},
		{domain.NewForbiddenError("forbidden"), http.StatusForbidden},
		{domain.NewNotFoundError("missing"), http.StatusNotFound},
		{domain.NewFormatError("broken hash", nil), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, body := response.FromError(tc.err)
		assert.Equal(t, tc.status, status, "err: %v", tc.err)
		assert.False(t, body.Success)
		assert.NotEmpty(t, body.Error)
	}
}

// 5xx 不把内部细节带给客户端
func TestFromError_MasksInternalDetails(t *testing.T) {
	status, body := response.FromError(domain.NewFormatError("stored password hash is malformed", errors.New("crypto/bcrypt: hashedSecret too short")))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Error)

	status, body = response.FromError(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Error)
}
