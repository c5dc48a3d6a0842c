// Package security holds the password hashing and bearer token primitives.
package security

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

// Algorithm names the scheme used for newly created password hashes.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

// PasswordHasher hashes with the configured algorithm and verifies any
// supported format, recognised by its prefix. Switching algorithms
// therefore never invalidates existing hashes.
type PasswordHasher struct {
	algorithm  Algorithm
	bcryptCost int
	argon      Argon2Params
}

// HasherOption customises a PasswordHasher.
type HasherOption func(*PasswordHasher)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) HasherOption {
	return func(h *PasswordHasher) { h.bcryptCost = cost }
}

// WithArgon2Params overrides DefaultArgon2Params.
func WithArgon2Params(p Argon2Params) HasherOption {
	return func(h *PasswordHasher) { h.argon = p }
}

// NewPasswordHasher builds a hasher for the given algorithm. An empty name
// selects bcrypt.
func NewPasswordHasher(algorithm Algorithm, opts ...HasherOption) (*PasswordHasher, error) {
	if algorithm == "" {
		algorithm = AlgorithmBcrypt
	}
	h := &PasswordHasher{
		algorithm:  algorithm,
		bcryptCost: bcrypt.DefaultCost,
		argon:      DefaultArgon2Params,
	}
	for _, opt := range opts {
		opt(h)
	}

	switch h.algorithm {
	case AlgorithmBcrypt:
		if h.bcryptCost < bcrypt.MinCost || h.bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("security: bcrypt cost %d out of range [%d,%d]", h.bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case AlgorithmArgon2id:
		if err := h.argon.validate(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("security: unknown password hasher %q", algorithm)
	}
	return h, nil
}

// Algorithm reports the scheme used by Hash.
func (h *PasswordHasher) Algorithm() Algorithm { return h.algorithm }

// Hash returns a freshly salted hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if h.algorithm == AlgorithmArgon2id {
		return hashArgon2id(password, h.argon)
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// an unparseable hash returns an error wrapping domain.ErrMalformedHash.
func (h *PasswordHasher) Verify(password, hash string) (bool, error) {
	switch {
	case isBcryptHash(hash):
		return verifyBcrypt(password, hash)
	case strings.HasPrefix(hash, argon2idPrefix):
		return verifyArgon2id(password, hash)
	default:
		return false, fmt.Errorf("%w: unrecognised format", domain.ErrMalformedHash)
	}
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}
