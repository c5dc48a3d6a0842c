package ports

// PasswordHasher produces salted, adaptive one-way hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns (false, nil) on mismatch and an error wrapping
	// domain.ErrMalformedHash when hash cannot be parsed.
	Verify(password, hash string) (bool, error)
}
