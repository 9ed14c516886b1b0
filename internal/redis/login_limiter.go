package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	loginWindow      = time.Minute
	maxLoginAttempts = 5
)

// LoginLimiter throttles login attempts per email with a fixed-window
// counter. Failures of the limiter itself never block a login: availability
// of the throttle is best effort, the bcrypt check is authoritative.
type LoginLimiter struct {
	client *goredis.Client
}

func NewLoginLimiter(client *goredis.Client) *LoginLimiter {
	return &LoginLimiter{client: client}
}

// Allow records an attempt for the key and reports whether it stays within
// the window budget. A nil limiter allows everything.
func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	if l == nil || l.client == nil {
		return true, nil
	}

	key := fmt.Sprintf("login_attempts:%s", email)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count login attempt: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, loginWindow).Err(); err != nil {
			return false, fmt.Errorf("failed to set attempt window: %w", err)
		}
	}

	return count <= maxLoginAttempts, nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, fmt.Sprintf("login_attempts:%s", email)).Err()
}
