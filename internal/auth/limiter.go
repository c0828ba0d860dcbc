package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sitehem/sitehem/internal/shared"
)

// LoginLimiter throttles login attempts per email+IP pair. bcrypt already
// makes each attempt expensive; the limiter caps how many a caller gets
// inside the window at all.
type LoginLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewLoginLimiter constructs a limiter. A nil client disables throttling.
func NewLoginLimiter(client *redis.Client, max int, window time.Duration) *LoginLimiter {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginLimiter{client: client, max: max, window: window}
}

// Allow records an attempt and reports whether it may proceed. Redis being
// unreachable fails open; losing throttling is preferable to losing login.
func (l *LoginLimiter) Allow(ctx context.Context, email, ip string) error {
	if l == nil || l.client == nil {
		return nil
	}
	key := l.key(email, ip)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return nil
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	if count > int64(l.max) {
		return shared.ErrRateLimited
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email, ip string) {
	if l == nil || l.client == nil {
		return
	}
	l.client.Del(ctx, l.key(email, ip))
}

func (l *LoginLimiter) key(email, ip string) string {
	return fmt.Sprintf("login_attempts:%s:%s", strings.ToLower(email), ip)
}
