package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

const argon2idPrefix = "$argon2id$"

// Upper bounds accepted from a stored hash, so a corrupted row cannot make
// a single login allocate unbounded memory or CPU.
const (
	maxArgon2Memory = 4 * 64 * 1024 // KiB
	maxArgon2Time   = 16
	maxArgon2KeyLen = 128
)

// Argon2Params are the argon2id cost parameters encoded into every hash.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var DefaultArgon2Params = Argon2Params{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

func (p Argon2Params) validate() error {
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 || p.KeyLen < 16 || p.SaltLen < 8 {
		return fmt.Errorf("security: invalid argon2id parameters %+v", p)
	}
	if p.Time > maxArgon2Time || p.Memory > maxArgon2Memory || p.KeyLen > maxArgon2KeyLen {
		return fmt.Errorf("security: argon2id parameters %+v exceed limits", p)
	}
	return nil
}

// hashArgon2id encodes as $argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<key>.
func hashArgon2id(password string, p Argon2Params) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2id: read salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix,
		argon2.Version,
		p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, fmt.Errorf("%w: argon2id: expected 6 segments, got %d", domain.ErrMalformedHash, len(parts))
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, fmt.Errorf("%w: argon2id: unsupported version %q", domain.ErrMalformedHash, parts[2])
	}

	var p Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return false, fmt.Errorf("%w: argon2id: parameters %q", domain.ErrMalformedHash, parts[3])
	}
	if p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return false, fmt.Errorf("%w: argon2id: zero parameter", domain.ErrMalformedHash)
	}
	if p.Memory > maxArgon2Memory || p.Time > maxArgon2Time {
		return false, fmt.Errorf("%w: argon2id: parameters m=%d,t=%d exceed limits", domain.ErrMalformedHash, p.Memory, p.Time)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false, fmt.Errorf("%w: argon2id: salt", domain.ErrMalformedHash)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 || len(want) > maxArgon2KeyLen {
		return false, fmt.Errorf("%w: argon2id: key", domain.ErrMalformedHash)
	}

	got := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}
