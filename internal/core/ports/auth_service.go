package ports

import (
	"context"
	"time"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

// RegisterInput is the self-registration payload handed to AuthService.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Latitude  *float64
	Longitude *float64
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
}
