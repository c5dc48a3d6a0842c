package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrMalformedHash marks a stored password hash that cannot be parsed.
	// It is an internal fault, not a credential mismatch.
	ErrMalformedHash = errors.New("malformed password hash")
)
