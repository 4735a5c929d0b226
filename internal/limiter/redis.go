package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisLimiter struct {
	client      *redis.Client
	maxAttempts int
	lockFor     time.Duration
}

// NewRedisLimiter returns a Limiter backed by Redis. The attempt
// counter has no TTL (it never resets on its own); the time lock
// expires via Redis key expiry.
func NewRedisLimiter(client *redis.Client, maxAttempts int, lockFor time.Duration) Limiter {
	return &redisLimiter{
		client:      client,
		maxAttempts: maxAttempts,
		lockFor:     lockFor,
	}
}

func attemptsKey(clientIP string) string {
	return fmt.Sprintf("limit:attempts:%s", clientIP)
}

func lockKey(clientIP string) string {
	return fmt.Sprintf("limit:lock:%s", clientIP)
}

func (l *redisLimiter) Allowed(ctx context.Context, clientIP string) (bool, error) {
	count, err := l.client.Get(ctx, attemptsKey(clientIP)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read attempt count: %w", err)
	}
	return count < l.maxAttempts, nil
}

func (l *redisLimiter) RecordCompletion(ctx context.Context, clientIP string) error {
	if err := l.client.Incr(ctx, attemptsKey(clientIP)).Err(); err != nil {
		return fmt.Errorf("failed to increment attempt count: %w", err)
	}
	return nil
}

func (l *redisLimiter) Locked(ctx context.Context, clientIP string) (bool, error) {
	_, err := l.client.Get(ctx, lockKey(clientIP)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read lock: %w", err)
	}
	return true, nil
}

func (l *redisLimiter) Lock(ctx context.Context, clientIP string) error {
	if err := l.client.Set(ctx, lockKey(clientIP), time.Now().Format(time.RFC3339), l.lockFor).Err(); err != nil {
		return fmt.Errorf("failed to set lock: %w", err)
	}
	return nil
}
