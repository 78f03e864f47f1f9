package domain

import (
	"strings"
	"time"
)

// 角色常量："user" / "admin"
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser 对外投影：结构上就没有密码字段，避免逐个 handler 手动剥离
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserPatch 局部更新；nil 字段不动。ID/CreatedAt 不在这里，改不了
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *string
}

// NormalizeEmail 邮箱统一小写 + 去首尾空格；所有按邮箱查找都走这里
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
