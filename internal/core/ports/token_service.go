package ports

import (
	"time"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

// TokenIssuer signs bearer tokens for a subject.
type TokenIssuer interface {
	Issue(subject string, role domain.Role) (token string, expiresAt time.Time, err error)
}

// TokenVerifier resolves a bearer token to the principal it asserts.
// Verification touches no storage or network.
type TokenVerifier interface {
	Verify(token string) (*domain.Principal, error)
}

// TokenService both issues and verifies tokens.
type TokenService interface {
	TokenIssuer
	TokenVerifier
}
