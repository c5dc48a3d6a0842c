// Package memory provides a process-local credential store for development
// and tests. Data does not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

type UserRepository struct {
	mu         sync.RWMutex
	byUsername map[string]*domain.User
	byEmail    map[string]string // email -> username
	byID       map[string]string // id -> username
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byUsername: make(map[string]*domain.User),
		byEmail:    make(map[string]string),
		byID:       make(map[string]string),
	}
}

func (r *UserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u), nil
}

// Save checks uniqueness and writes under one lock, so concurrent inserts
// of the same username cannot both succeed.
func (r *UserRepository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		return r.insert(user)
	}
	return r.update(user)
}

func (r *UserRepository) insert(user *domain.User) (*domain.User, error) {
	if _, ok := r.byUsername[user.Username]; ok {
		return nil, domain.ErrUsernameTaken
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, domain.ErrEmailTaken
	}

	stored := clone(user)
	stored.ID = uuid.NewString()
	r.byUsername[stored.Username] = stored
	r.byEmail[stored.Email] = stored.Username
	r.byID[stored.ID] = stored.Username
	return clone(stored), nil
}

func (r *UserRepository) update(user *domain.User) (*domain.User, error) {
	username, ok := r.byID[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	current := r.byUsername[username]

	if user.Email != current.Email {
		if _, taken := r.byEmail[user.Email]; taken {
			return nil, domain.ErrEmailTaken
		}
		delete(r.byEmail, current.Email)
		r.byEmail[user.Email] = username
	}

	stored := clone(user)
	stored.Username = current.Username // immutable
	stored.CreatedAt = current.CreatedAt
	r.byUsername[username] = stored
	return clone(stored), nil
}

func (r *UserRepository) Ping(context.Context) error { return nil }

func clone(u *domain.User) *domain.User {
	c := *u
	if u.Latitude != nil {
		lat := *u.Latitude
		c.Latitude = &lat
	}
	if u.Longitude != nil {
		lng := *u.Longitude
		c.Longitude = &lng
	}
	return &c
}
