package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTSessions 无状态会话：token 自带 uid 和过期时间，水平扩容时不需要共享存储。
// 代价是 Invalidate 无法立刻生效，登出要等 token 自然过期，选这个后端前想清楚
type JWTSessions struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

type sessionClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

func NewJWTSessions(secret []byte, issuer string, ttl time.Duration) *JWTSessions {
	return &JWTSessions{secret: secret, issuer: issuer, ttl: ttl}
}

func (s *JWTSessions) Create(userID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTSessions) Validate(token string) (string, bool, error) {
	t, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		// 过期、签名不对、格式坏掉，对调用方都是“无此会话”
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenMalformed) ||
			errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenInvalidIssuer) {
			return "", false, nil
		}
		return "", false, err
	}
	c, ok := t.Claims.(*sessionClaims)
	if !ok || !t.Valid || c.UID == "" {
		return "", false, nil
	}
	return c.UID, true, nil
}

// Invalidate 无状态实现做不到即时吊销
func (s *JWTSessions) Invalidate(string) error { return nil }

func (s *JWTSessions) CleanupExpired() int { return 0 }
