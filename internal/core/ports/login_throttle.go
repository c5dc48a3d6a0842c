package ports

import "context"

// LoginThrottle tracks failed logins per username.
type LoginThrottle interface {
	Allowed(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
