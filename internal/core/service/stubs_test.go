package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	nextID  int
	saveErr error // if set, Save returns this error
	findErr error // if set, FindByUsername returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[username]
	return ok, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// Save mirrors the unique indexes of the real stores.
func (r *stubUserRepo) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		if _, exists := r.users[user.Username]; exists {
			return nil, domain.ErrUsernameTaken
		}
		for _, u := range r.users {
			if u.Email == user.Email {
				return nil, domain.ErrEmailTaken
			}
		}
		r.nextID++
		saved := cloneUser(user)
		saved.ID = fmt.Sprintf("id-%d", r.nextID)
		r.users[saved.Username] = saved
		return cloneUser(saved), nil
	}

	existing, ok := r.users[user.Username]
	if !ok || existing.ID != user.ID {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.Username] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Ping(context.Context) error { return nil }

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// stubHasher stores "hashed:<password>"; anything without that prefix is
// treated as a corrupted hash.
type stubHasher struct {
	mu       sync.Mutex
	verifies int
	hashErr  error
}

func (h *stubHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + password, nil
}

func (h *stubHasher) Verify(password, hash string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	if !strings.HasPrefix(hash, "hashed:") {
		return false, fmt.Errorf("stub: %w", domain.ErrMalformedHash)
	}
	return hash == "hashed:"+password, nil
}

func (h *stubHasher) verifyCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifies
}

type stubTokens struct {
	issueErr error
}

func (s *stubTokens) Issue(subject string, role domain.Role) (string, time.Time, error) {
	if s.issueErr != nil {
		return "", time.Time{}, s.issueErr
	}
	return "token-" + subject + "-" + string(role), time.Now().Add(time.Hour), nil
}

type stubThrottle struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
	err      error
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{max: max, failures: make(map[string]int)}
}

func (t *stubThrottle) Allowed(_ context.Context, username string) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[username] < t.max, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, username string) error {
	if t.err != nil {
		return t.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[username]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	if t.err != nil {
		return t.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, username)
	return nil
}

var errStoreDown = errors.New("store unavailable")
