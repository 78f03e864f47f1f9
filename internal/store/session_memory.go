package store

import (
	"sync"
	"time"

	"ttech-shop/internal/domain"
	"ttech-shop/pkg/utils"
)

// MemorySessions 进程内会话表。过期只在 Validate 里被观察到并当场清除（惰性），
// CleanupExpired 是线性全表扫（O(n)），只为限制内存占用，小规模够用。
type MemorySessions struct {
	mu   sync.Mutex
	ttl  time.Duration
	sess map[string]domain.Session
}

func NewMemorySessions(ttl time.Duration) *MemorySessions {
	return &MemorySessions{
		ttl:  ttl,
		sess: make(map[string]domain.Session),
	}
}

func (m *MemorySessions) Create(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	token := utils.NewID()
	m.sess[token] = domain.Session{
		ID:        token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	return token, nil
}

// Validate 读后可能升级为写（清除过期），所以整段都在写锁里：
// 两个并发校验同一条临期会话不会互相踩
func (m *MemorySessions) Validate(token string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sess[token]
	if !ok {
		return "", false, nil
	}
	if s.Expired(time.Now()) {
		delete(m.sess, token)
		return "", false, nil
	}
	return s.UserID, true, nil
}

func (m *MemorySessions) Invalidate(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, token)
	return nil
}

func (m *MemorySessions) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	n := 0
	for token, s := range m.sess {
		if s.Expired(now) {
			delete(m.sess, token)
			n++
		}
	}
	return n
}
