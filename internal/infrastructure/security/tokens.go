package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

const DefaultIssuer = "gourmet-gateway/user-service"

type tokenClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 JWTs. The secret is fixed at
// construction and only read afterwards, so one instance is safe for
// concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

// WithIssuer overrides DefaultIssuer.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) { s.issuer = issuer }
}

func NewTokenService(secret []byte, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("security: token secret must not be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	s := &TokenService{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithStrictDecoding(),
	)
	return s, nil
}

// TTL is the fixed lifetime of every issued token.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for subject valid over [now, now+ttl). Timestamps are
// whole seconds, as encoded on the wire.
func (s *TokenService) Issue(subject string, role domain.Role) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("issue token: %w: empty subject", domain.ErrInvalidInput)
	}

	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl).Truncate(time.Second)

	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm, issuer and the [iat, exp) window and
// returns the asserted principal. Every failure wraps domain.ErrInvalidToken.
func (s *TokenService) Verify(token string) (*domain.Principal, error) {
	claims := &tokenClaims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidToken, claims.Role)
	}

	p := &domain.Principal{
		Username: claims.Subject,
		Role:     claims.Role,
		TokenID:  claims.ID,
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
