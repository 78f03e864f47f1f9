package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"ttech-shop/pkg/utils"
)

const sessKeyPrefix = "sess:"

// RedisSessions 多进程部署用：token -> userID，TTL 交给 Redis 原生过期
type RedisSessions struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessions(rdb *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{rdb: rdb, ttl: ttl}
}

func (s *RedisSessions) Create(userID string) (string, error) {
	token := utils.NewID()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.rdb.Set(ctx, sessKeyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisSessions) Validate(token string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	uid, err := s.rdb.Get(ctx, sessKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return uid, true, nil
}

func (s *RedisSessions) Invalidate(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.rdb.Del(ctx, sessKeyPrefix+token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Redis 端 TTL 自动过期，无需扫描
func (s *RedisSessions) CleanupExpired() int { return 0 }
