package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultLockout = 15 * time.Minute

// LoginLockout counts failed logins per email in Redis. An email is locked
// while its counter is at or above maxAttempts; the counter expires lockout
// after the first failure of a window.
// Key format: login_failures:<normalized email>
type LoginLockout struct {
	client      redis.Cmdable
	maxAttempts int
	lockout     time.Duration
}

// NewLoginLockout wraps client. maxAttempts <= 0 disables locking while
// still counting failures.
func NewLoginLockout(client redis.Cmdable, maxAttempts int, lockout time.Duration) *LoginLockout {
	if lockout <= 0 {
		lockout = defaultLockout
	}
	return &LoginLockout{client: client, maxAttempts: maxAttempts, lockout: lockout}
}

func (l *LoginLockout) Locked(ctx context.Context, email string) (bool, error) {
	if l.maxAttempts <= 0 {
		return false, nil
	}
	n, err := l.client.Get(ctx, l.key(email)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lockout check: %w", err)
	}
	return n >= l.maxAttempts, nil
}

func (l *LoginLockout) RecordFailure(ctx context.Context, email string) error {
	key := l.key(email)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("lockout record: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.lockout).Err(); err != nil {
			return fmt.Errorf("lockout expire: %w", err)
		}
	}
	return nil
}

func (l *LoginLockout) Reset(ctx context.Context, email string) error {
	if err := l.client.Del(ctx, l.key(email)).Err(); err != nil {
		return fmt.Errorf("lockout reset: %w", err)
	}
	return nil
}

func (l *LoginLockout) key(email string) string {
	return "login_failures:" + email
}
