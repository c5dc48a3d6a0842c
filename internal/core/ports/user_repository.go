package ports

import (
	"context"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

// UserRepository is the credential store. Implementations must enforce
// username and email uniqueness on insert and report violations as
// domain.ErrUsernameTaken or domain.ErrEmailTaken.
type UserRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Save inserts user when its ID is empty and updates the stored record
	// otherwise. The returned copy carries the assigned ID and timestamps.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	Ping(ctx context.Context) error
}
