// Package auth 组合记录存储、密码哈希与会话三者，对路由层只暴露
// 注册/登录/登出/当前用户/角色门禁这几个动作，哈希后的密码永远不出这个包。
package auth

import (
	"strings"

	"go.uber.org/zap"

	"ttech-shop/internal/domain"
	"ttech-shop/internal/store"
	"ttech-shop/pkg/utils"
)

const invalidCredentials = "invalid email or password"

type Service struct {
	store    store.Store
	sessions store.SessionStore
	log      *zap.Logger
}

func NewService(s store.Store, sessions store.SessionStore, log *zap.Logger) *Service {
	return &Service{store: s, sessions: sessions, log: log}
}

// Register 邮箱大小写不敏感唯一；成功返回公开投影（不含哈希）。
// 注意：不幂等，盲目重试会撞重复邮箱校验，这是预期行为
func (s *Service) Register(name, email, password string) (domain.PublicUser, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return domain.PublicUser{}, domain.NewValidationError("name, email and password are required")
	}
	if _, exists, err := s.store.GetUserByEmail(email); err != nil {
		return domain.PublicUser{}, err
	} else if exists {
		return domain.PublicUser{}, domain.NewValidationError("email already registered")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return domain.PublicUser{}, err
	}
	u, err := s.store.CreateUser(domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if err != nil {
		return domain.PublicUser{}, err
	}
	return u.Public(), nil
}

// Login 查无此邮箱和密码不对返回同一个 AuthError，不给枚举账号的口子。
// 日志同理：失败只记邮箱规范化后的值和“登录失败”，不记原因
func (s *Service) Login(email, password string) (string, domain.PublicUser, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", domain.PublicUser{}, domain.NewValidationError("email and password are required")
	}

	u, ok, err := s.store.GetUserByEmail(email)
	if err != nil {
		return "", domain.PublicUser{}, err
	}
	if !ok {
		return "", domain.PublicUser{}, domain.NewAuthError(invalidCredentials)
	}
	match, err := utils.CheckPassword(password, u.PasswordHash)
	if err != nil {
		// 存量哈希坏了是我们的数据问题，不是用户的凭证问题
		return "", domain.PublicUser{}, domain.NewFormatError("stored password hash is malformed", err)
	}
	if !match {
		return "", domain.PublicUser{}, domain.NewAuthError(invalidCredentials)
	}

	token, err := s.sessions.Create(u.ID)
	if err != nil {
		return "", domain.PublicUser{}, err
	}
	s.log.Info("login ok", zap.String("uid", u.ID), zap.String("role", u.Role))
	return token, u.Public(), nil
}

func (s *Service) Logout(token string) error {
	return s.sessions.Invalidate(token)
}

// CurrentUser token 无效/过期/用户已删，一律 ok=false
func (s *Service) CurrentUser(token string) (domain.PublicUser, bool, error) {
	if token == "" {
		return domain.PublicUser{}, false, nil
	}
	uid, ok, err := s.sessions.Validate(token)
	if err != nil || !ok {
		return domain.PublicUser{}, false, err
	}
	u, ok, err := s.store.GetUserByID(uid)
	if err != nil || !ok {
		return domain.PublicUser{}, false, err
	}
	return u.Public(), true, nil
}

// RequireRole 管理接口的门禁；user 为 nil 表示未认证
func (s *Service) RequireRole(user *domain.PublicUser, role string) error {
	if user == nil || user.Role != role {
		return domain.NewForbiddenError("forbidden")
	}
	return nil
}
