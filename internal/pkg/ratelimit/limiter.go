// internal/pkg/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window counter kept in Redis. A nil Limiter, or one
// with a non-positive limit, allows everything.
type Limiter struct {
	client redis.Cmdable
	scope  string
	limit  int64
	window time.Duration
}

func NewLimiter(client redis.Cmdable, scope string, limit int64, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		scope:  scope,
		limit:  limit,
		window: window,
	}
}

// Allow counts one hit for key and reports whether it is within the limit,
// along with the hits remaining in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	if l == nil || l.client == nil || l.limit <= 0 {
		return true, 0, nil
	}

	k := l.key(key)
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment %s rate limit: %w", l.scope, err)
	}

	// First hit opens the window
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set %s rate limit window: %w", l.scope, err)
		}
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.limit, remaining, nil
}

// Reset clears the counter for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, l.key(key)).Err()
}

func (l *Limiter) key(key string) string {
	return fmt.Sprintf("ratelimit:%s:%s", l.scope, key)
}
