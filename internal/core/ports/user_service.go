package ports

import (
	"context"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

// UserService serves profile operations for the identity carried by ctx.
type UserService interface {
	Me(ctx context.Context) (*domain.User, error)
	UpdateLocation(ctx context.Context, latitude, longitude float64) (*domain.User, error)
	Lookup(ctx context.Context, username string) (*domain.User, error)
}
