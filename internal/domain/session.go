package domain

import "time"

// Session 仅在 current time < ExpiresAt 时有效；过期由校验路径惰性清除
type Session struct {
	ID        string    `json:"id"` // 不透明 token
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
