package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

func asPrincipal(username string, role domain.Role) context.Context {
	return domain.ContextWithPrincipal(context.Background(), &domain.Principal{Username: username, Role: role})
}

func seededRepo() *stubUserRepo {
	repo := newStubUserRepo()
	repo.users["alice"] = &domain.User{ID: "id-alice", Username: "alice", Email: "a@x.com", PasswordHash: "hashed:pw", Role: domain.RoleUser}
	repo.users["root"] = &domain.User{ID: "id-root", Username: "root", Email: "r@x.com", PasswordHash: "hashed:pw", Role: domain.RoleAdmin}
	return repo
}

func TestUserService_Me(t *testing.T) {
	svc := NewUserService(seededRepo(), zerolog.Nop())

	user, err := svc.Me(asPrincipal("alice", domain.RoleUser))
	if err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if user.Username != "alice" || user.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUserService_Me_NoPrincipal(t *testing.T) {
	svc := NewUserService(seededRepo(), zerolog.Nop())

	if _, err := svc.Me(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUserService_Me_DeletedSubjectIsUnauthorized(t *testing.T) {
	svc := NewUserService(seededRepo(), zerolog.Nop())

	if _, err := svc.Me(asPrincipal("gone", domain.RoleUser)); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUserService_Me_StoreFailure(t *testing.T) {
	repo := seededRepo()
	repo.findErr = errStoreDown
	svc := NewUserService(repo, zerolog.Nop())

	_, err := svc.Me(asPrincipal("alice", domain.RoleUser))
	if !errors.Is(err, errStoreDown) || errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected internal store error, got %v", err)
	}
}

func TestUserService_UpdateLocation(t *testing.T) {
	repo := seededRepo()
	svc := NewUserService(repo, zerolog.Nop())

	user, err := svc.UpdateLocation(asPrincipal("alice", domain.RoleUser), 48.85, 2.35)
	if err != nil {
		t.Fatalf("UpdateLocation returned error: %v", err)
	}
	if user.Latitude == nil || *user.Latitude != 48.85 || user.Longitude == nil || *user.Longitude != 2.35 {
		t.Fatalf("coordinates not applied: %+v", user)
	}

	stored := repo.users["alice"]
	if stored.Latitude == nil || *stored.Latitude != 48.85 {
		t.Fatalf("coordinates not persisted: %+v", stored)
	}
	if repo.users["root"].Latitude != nil {
		t.Fatalf("other identities must not change")
	}
}

func TestUserService_UpdateLocation_OutOfRange(t *testing.T) {
	svc := NewUserService(seededRepo(), zerolog.Nop())

	if _, err := svc.UpdateLocation(asPrincipal("alice", domain.RoleUser), 91, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.UpdateLocation(asPrincipal("alice", domain.RoleUser), 0, -181); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUserService_UpdateLocation_NoPrincipal(t *testing.T) {
	svc := NewUserService(seededRepo(), zerolog.Nop())

	if _, err := svc.UpdateLocation(context.Background(), 1, 1); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUserService_Lookup(t *testing.T) {
	svc := NewUserService(seededRepo(), zerolog.Nop())

	user, err := svc.Lookup(asPrincipal("root", domain.RoleAdmin), "alice")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Lookup(asPrincipal("root", domain.RoleAdmin), "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Lookup_RequiresAdmin(t *testing.T) {
	svc := NewUserService(seededRepo(), zerolog.Nop())

	if _, err := svc.Lookup(asPrincipal("alice", domain.RoleUser), "root"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Lookup(context.Background(), "root"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
