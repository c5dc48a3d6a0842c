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

// dummyPassword is hashed once at construction so that logins for unknown
// usernames spend the same hashing time as logins with a wrong password.
const dummyPassword = "timing-equaliser-not-a-real-password"

// AuthService implements registration and login.
type AuthService struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenIssuer
	throttle  ports.LoginThrottle
	log       zerolog.Logger
	now       func() time.Time
	dummyHash string
}

// NewAuthService wires the authentication manager. throttle may be nil, in
// which case failed logins are not limited.
func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	s := &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		log:      log,
		now:      time.Now,
	}
	if h, err := hasher.Hash(dummyPassword); err == nil {
		s.dummyHash = h
	} else {
		log.Warn().Err(err).Msg("could not prepare timing-equaliser hash")
	}
	return s
}

// Register creates a USER identity after checking both username and email
// are free, then issues a token for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	taken, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("register: check username: %w", err)
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}

	taken, err = s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("register: check email: %w", err)
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store rejects a concurrent duplicate that slipped past the checks.
	saved, err := s.users.Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	result, err := s.issue(saved)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("username", saved.Username).Str("user_id", saved.ID).Msg("user registered")
	return result, nil
}

// Login verifies the credentials and issues a token. An unknown username and
// a wrong password yield the same domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if !s.allowed(ctx, username) {
		s.log.Warn().Str("username", username).Msg("login throttled")
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		if s.dummyHash != "" {
			_, _ = s.hasher.Verify(password, s.dummyHash)
		}
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: find user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: verify password for %q: %w", username, err)
	}
	if !ok {
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	s.resetFailures(ctx, username)

	result, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("username", user.Username).Msg("user logged in")
	return result, nil
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &ports.AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Throttle failures fail open: an unavailable counter must not lock
// everybody out.
func (s *AuthService) allowed(ctx context.Context, username string) bool {
	if s.throttle == nil {
		return true
	}
	ok, err := s.throttle.Allowed(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed")
		return true
	}
	return ok
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}

func (s *AuthService) resetFailures(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login failures")
	}
}
