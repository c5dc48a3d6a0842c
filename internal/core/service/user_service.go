package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
	"github.com/gourmet-gateway/user-service/internal/core/ports"
)

// UserService serves profile reads and location updates. Every operation is
// keyed on the principal stored in ctx by the identity middleware.
type UserService struct {
	users ports.UserRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewUserService(users ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, log: log, now: time.Now}
}

// Me returns the caller's own record. A token whose subject no longer
// resolves is treated as unauthenticated.
func (s *UserService) Me(ctx context.Context) (*domain.User, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.current(ctx, p)
}

// UpdateLocation stores new coordinates on the caller's record only.
func (s *UserService) UpdateLocation(ctx context.Context, latitude, longitude float64) (*domain.User, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}

	user, err := s.current(ctx, p)
	if err != nil {
		return nil, err
	}

	user.SetLocation(latitude, longitude)
	user.UpdatedAt = s.now().UTC()

	saved, err := s.users.Save(ctx, user)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}

	s.log.Info().Str("username", saved.Username).Msg("location updated")
	return saved, nil
}

// Lookup returns any identity by username. Only ADMIN principals may call it.
func (s *UserService) Lookup(ctx context.Context, username string) (*domain.User, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if p.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *UserService) current(ctx context.Context, p *domain.Principal) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, p.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load current user: %w", err)
	}
	return user, nil
}
