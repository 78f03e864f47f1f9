package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ttech-shop/internal/auth"
	"ttech-shop/internal/domain"
	"ttech-shop/internal/store"
)

func newService(t *testing.T) (*auth.Service, store.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	sessions := store.NewMemorySessions(7 * 24 * time.Hour)
	return auth.NewService(s, sessions, zap.NewNop()), s
}

func TestService_RegisterLoginCurrentUser(t *testing.T) {
	svc, _ := newService(t)

	u, err := svc.Register("Alice", "Alice@Example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)

	// 登录时邮箱大小写不敏感
	token, logged, err := svc.Login("ALICE@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, u.ID, logged.ID)

	cur, ok, err := svc.CurrentUser(token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u.ID, cur.ID)

	require.NoError(t, svc.Logout(token))
	_, ok, err = svc.CurrentUser(token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Register_Validation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Register("", "a@b.com", "pw")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Register("Alice", "a@b.com", "secret123")
	require.NoError(t, err)
	// 同一邮箱（不同大小写）二次注册被拒
	_, err = svc.Register("Bob", "A@B.COM", "other-pass")
	require.ErrorAs(t, err, &verr)
}

// 查无此邮箱和密码错误必须对外不可区分
func TestService_Login_IndistinguishableFailures(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Register("Alice", "a@b.com", "secret123")
	require.NoError(t, err)

	_, _, errUnknown := svc.Login("nobody@b.com", "secret123")
	_, _, errWrongPw := svc.Login("a@b.com", "wrong-password")

	var authErr1, authErr2 *domain.AuthError
	require.ErrorAs(t, errUnknown, &authErr1)
	require.ErrorAs(t, errWrongPw, &authErr2)
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestService_Login_MalformedStoredHash(t *testing.T) {
	svc, s := newService(t)
	_, err := s.CreateUser(domain.User{
		Name:         "Broken",
		Email:        "broken@b.com",
		PasswordHash: "not-a-bcrypt-hash",
		Role:         domain.RoleUser,
	})
	require.NoError(t, err)

	// 存量哈希损坏是服务端数据问题，不能报成凭证错误
	_, _, err = svc.Login("broken@b.com", "whatever")
	var ferr *domain.FormatError
	require.ErrorAs(t, err, &ferr)
}

func TestService_CurrentUser_DeletedUser(t *testing.T) {
	svc, s := newService(t)
	u, err := svc.Register("Alice", "a@b.com", "secret123")
	require.NoError(t, err)
	token, _, err := svc.Login("a@b.com", "secret123")
	require.NoError(t, err)

	_, err = s.DeleteUser(u.ID)
	require.NoError(t, err)

	// 会话还在但用户没了：一律当未登录
	_, ok, err := svc.CurrentUser(token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_RequireRole(t *testing.T) {
	svc, _ := newService(t)

	admin := domain.PublicUser{ID: "1", Role: domain.RoleAdmin}
	user := domain.PublicUser{ID: "2", Role: domain.RoleUser}

	assert.NoError(t, svc.RequireRole(&admin, domain.RoleAdmin))

	var ferr *domain.ForbiddenError
	require.ErrorAs(t, svc.RequireRole(&user, domain.RoleAdmin), &ferr)
	require.ErrorAs(t, svc.RequireRole(nil, domain.RoleAdmin), &ferr)
}
