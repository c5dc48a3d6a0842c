package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	throttleKeyPrefix = "login:fail:"

	DefaultMaxFailures   = 5
	DefaultFailureWindow = 15 * time.Minute
)

// LoginThrottle counts failed logins per username in fixed windows.
// Key format: login:fail:<username>
type LoginThrottle struct {
	client      redis.Cmdable
	maxFailures int64
	window      time.Duration
}

// NewLoginThrottle falls back to the defaults for non-positive limits.
func NewLoginThrottle(client redis.Cmdable, maxFailures int, window time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if window <= 0 {
		window = DefaultFailureWindow
	}
	return &LoginThrottle{client: client, maxFailures: int64(maxFailures), window: window}
}

// Allowed reports whether the username is still under its failure budget.
func (t *LoginThrottle) Allowed(ctx context.Context, username string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n < t.maxFailures, nil
}

// RecordFailure increments the counter. The window starts with the first
// failure and is not extended by later ones.
func (t *LoginThrottle) RecordFailure(ctx context.Context, username string) error {
	key := t.key(username)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username string) error {
	if err := t.client.Del(ctx, t.key(username)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

func (t *LoginThrottle) key(username string) string {
	return throttleKeyPrefix + username
}
