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

// SeedAccount describes an identity created at startup when missing.
type SeedAccount struct {
	Username  string
	Email     string
	Password  string
	Role      domain.Role
	Latitude  float64
	Longitude float64
}

// DefaultSeedAccounts returns the demo admin and sample user.
func DefaultSeedAccounts(adminPassword, userPassword string) []SeedAccount {
	return []SeedAccount{
		{
			Username:  "admin",
			Email:     "admin@restaurant.com",
			Password:  adminPassword,
			Role:      domain.RoleAdmin,
			Latitude:  40.7128,
			Longitude: -74.0060,
		},
		{
			Username:  "user",
			Email:     "user@restaurant.com",
			Password:  userPassword,
			Role:      domain.RoleUser,
			Latitude:  40.7580,
			Longitude: -73.9855,
		},
	}
}

// Seeder is the bootstrap path and the only code that may create ADMIN
// identities.
type Seeder struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewSeeder(users ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *Seeder {
	return &Seeder{users: users, hasher: hasher, log: log}
}

// Seed creates every account whose username is not taken yet and returns
// how many were created.
func (s *Seeder) Seed(ctx context.Context, accounts []SeedAccount) (int, error) {
	created := 0
	for _, acc := range accounts {
		if acc.Username == "" || acc.Email == "" || acc.Password == "" || !acc.Role.Valid() {
			return created, fmt.Errorf("seed %q: %w", acc.Username, domain.ErrInvalidInput)
		}

		exists, err := s.users.ExistsByUsername(ctx, acc.Username)
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", acc.Username, err)
		}
		if exists {
			s.log.Debug().Str("username", acc.Username).Msg("seed account already present")
			continue
		}

		hash, err := s.hasher.Hash(acc.Password)
		if err != nil {
			return created, fmt.Errorf("seed %q: hash password: %w", acc.Username, err)
		}

		now := time.Now().UTC()
		user := &domain.User{
			Username:     acc.Username,
			Email:        acc.Email,
			PasswordHash: hash,
			Role:         acc.Role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		user.SetLocation(acc.Latitude, acc.Longitude)

		if _, err := s.users.Save(ctx, user); err != nil {
			// Another instance seeded the same account in the meantime.
			if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrEmailTaken) {
				continue
			}
			return created, fmt.Errorf("seed %q: %w", acc.Username, err)
		}

		created++
		s.log.Info().Str("username", acc.Username).Str("role", string(acc.Role)).Msg("seed account created")
	}
	return created, nil
}
