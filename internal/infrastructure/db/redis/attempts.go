package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter counts failed sign-ins per e-mail in a fixed window.
// Key format: signin:fail:<email>
type AttemptLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewAttemptLimiter(client *redis.Client, maxAttempts int, window time.Duration) *AttemptLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &AttemptLimiter{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Blocked reports whether email has used up its failures for the window.
func (l *AttemptLimiter) Blocked(ctx context.Context, email string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(email)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("attempt limiter: %w", err)
	}
	return n >= l.maxAttempts, nil
}

// RecordFailure bumps the counter; the window starts at the first failure.
func (l *AttemptLimiter) RecordFailure(ctx context.Context, email string) error {
	key := l.key(email)
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("attempt limiter: %w", err)
	}
	return nil
}

func (l *AttemptLimiter) Reset(ctx context.Context, email string) error {
	return l.client.Del(ctx, l.key(email)).Err()
}

func (l *AttemptLimiter) key(email string) string {
	return "signin:fail:" + email
}
