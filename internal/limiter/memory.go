package limiter

import (
	"context"
	"sync"
	"time"
)

type memoryLimiter struct {
	mu          sync.Mutex
	attempts    map[string]int
	locks       map[string]time.Time
	maxAttempts int
	lockFor     time.Duration
	now         func() time.Time
}

// NewMemoryLimiter returns an in-process Limiter. Used when REDIS_ADDR
// is not configured; state does not survive a restart.
func NewMemoryLimiter(maxAttempts int, lockFor time.Duration) Limiter {
	return &memoryLimiter{
		attempts:    make(map[string]int),
		locks:       make(map[string]time.Time),
		maxAttempts: maxAttempts,
		lockFor:     lockFor,
		now:         time.Now,
	}
}

func (l *memoryLimiter) Allowed(_ context.Context, clientIP string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attempts[clientIP] < l.maxAttempts, nil
}

func (l *memoryLimiter) RecordCompletion(_ context.Context, clientIP string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[clientIP]++
	return nil
}

func (l *memoryLimiter) Locked(_ context.Context, clientIP string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lockedAt, ok := l.locks[clientIP]
	if !ok {
		return false, nil
	}
	if l.now().Sub(lockedAt) >= l.lockFor {
		delete(l.locks, clientIP) // expired, self-clear
		return false, nil
	}
	return true, nil
}

func (l *memoryLimiter) Lock(_ context.Context, clientIP string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locks[clientIP] = l.now()
	return nil
}
