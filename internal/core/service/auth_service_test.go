package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
	"github.com/gourmet-gateway/user-service/internal/core/ports"
)

func newTestAuthService(repo *stubUserRepo, hasher *stubHasher, throttle *stubThrottle) *AuthService {
	var th ports.LoginThrottle
	if throttle != nil {
		th = throttle
	}
	return NewAuthService(repo, hasher, &stubTokens{}, th, zerolog.Nop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, &stubHasher{}, nil)

	lat, lng := 40.7, -73.9
	res, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice", Email: "a@x.com", Password: "pw1", Latitude: &lat, Longitude: &lng,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.Token != "token-alice-USER" {
		t.Fatalf("unexpected token: %s", res.Token)
	}
	if res.User.Role != domain.RoleUser {
		t.Fatalf("expected role USER, got %s", res.User.Role)
	}
	if res.User.PasswordHash == "pw1" {
		t.Fatalf("expected password to be hashed")
	}
	if res.User.ID == "" {
		t.Fatalf("expected an assigned id")
	}
	if res.User.Latitude == nil || *res.User.Latitude != lat {
		t.Fatalf("latitude not stored: %+v", res.User.Latitude)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), &stubHasher{}, nil)

	cases := []ports.RegisterInput{
		{Email: "a@x.com", Password: "pw"},
		{Username: "alice", Password: "pw"},
		{Username: "alice", Email: "a@x.com"},
	}
	for _, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
}

func TestAuthService_Register_UsernameTakenRegardlessOfEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, &stubHasher{}, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "bob", Email: "bob@x.com", Password: "pw"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for _, email := range []string{"bob@x.com", "other@x.com"} {
		_, err := svc.Register(ctx, ports.RegisterInput{Username: "bob", Email: email, Password: "pw2"})
		if !errors.Is(err, domain.ErrUsernameTaken) {
			t.Fatalf("expected ErrUsernameTaken for email %s, got %v", email, err)
		}
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 stored user, got %d", repo.count())
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, &stubHasher{}, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "carol", Email: "c@x.com", Password: "pw"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err := svc.Register(ctx, ports.RegisterInput{Username: "carol2", Email: "c@x.com", Password: "pw"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 stored user, got %d", repo.count())
	}
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.saveErr = errStoreDown
	svc := newTestAuthService(repo, &stubHasher{}, nil)

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "dave", Email: "d@x.com", Password: "pw"})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentSameUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, &stubHasher{}, nil)

	const attempts = 8
	errs := make([]error, attempts)
	var g errgroup.Group
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			start.Wait()
			_, errs[i] = svc.Register(context.Background(), ports.RegisterInput{
				Username: "bob",
				Email:    "bob" + string(rune('a'+i)) + "@x.com",
				Password: "pw",
			})
			return nil
		})
	}
	start.Done()
	_ = g.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrUsernameTaken):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one success, got %d", succeeded)
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 stored user, got %d", repo.count())
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, &stubHasher{}, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(ctx, "alice", "pw1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token != "token-alice-USER" {
		t.Fatalf("unexpected token: %s", res.Token)
	}
	if res.User.Username != "alice" {
		t.Fatalf("unexpected user: %+v", res.User)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	hasher := &stubHasher{}
	svc := newTestAuthService(repo, hasher, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, wrongPassword := svc.Login(ctx, "alice", "wrong")
	before := hasher.verifyCalls()
	_, unknownUser := svc.Login(ctx, "ghost", "pw1")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) || !errors.Is(unknownUser, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", wrongPassword, unknownUser)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, unknownUser)
	}
	if hasher.verifyCalls() != before+1 {
		t.Fatalf("expected a hash verification for the unknown username too")
	}
}

func TestAuthService_Login_EmptyCredentials(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), &stubHasher{}, nil)

	if _, err := svc.Login(context.Background(), "", "pw"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_MalformedHashIsInternal(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, &stubHasher{}, nil)
	repo.users["eve"] = &domain.User{ID: "id-eve", Username: "eve", PasswordHash: "garbage", Role: domain.RoleUser}

	_, err := svc.Login(context.Background(), "eve", "pw")
	if !errors.Is(err, domain.ErrMalformedHash) {
		t.Fatalf("expected ErrMalformedHash, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("malformed hash must not be reported as bad credentials")
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errStoreDown
	svc := newTestAuthService(repo, &stubHasher{}, nil)

	_, err := svc.Login(context.Background(), "alice", "pw")
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAuthService_Login_TokenFailure(t *testing.T) {
	repo := newStubUserRepo()
	hasher := &stubHasher{}
	issueErr := errors.New("signing failed")
	svc := NewAuthService(repo, hasher, &stubTokens{issueErr: issueErr}, nil, zerolog.Nop())
	repo.users["alice"] = &domain.User{ID: "id-1", Username: "alice", PasswordHash: "hashed:pw", Role: domain.RoleUser}

	if _, err := svc.Login(context.Background(), "alice", "pw"); !errors.Is(err, issueErr) {
		t.Fatalf("expected signing error, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	throttle := newStubThrottle(2)
	svc := newTestAuthService(repo, &stubHasher{}, throttle)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := svc.Login(ctx, "alice", "pw1"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	// Unknown usernames are counted the same way.
	for i := 0; i < 2; i++ {
		_, _ = svc.Login(ctx, "ghost", "pw")
	}
	if _, err := svc.Login(ctx, "ghost", "pw"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts for unknown user, got %v", err)
	}
}

func TestAuthService_Login_SuccessResetsThrottle(t *testing.T) {
	repo := newStubUserRepo()
	throttle := newStubThrottle(2)
	svc := newTestAuthService(repo, &stubHasher{}, throttle)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, _ = svc.Login(ctx, "alice", "wrong")
	if _, err := svc.Login(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if n := throttle.failures["alice"]; n != 0 {
		t.Fatalf("expected counter reset, got %d", n)
	}
}

func TestAuthService_Login_ThrottleErrorFailsOpen(t *testing.T) {
	repo := newStubUserRepo()
	throttle := newStubThrottle(1)
	svc := newTestAuthService(repo, &stubHasher{}, throttle)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw1"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	throttle.err = errors.New("redis down")

	if _, err := svc.Login(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("expected login to succeed when throttle is unavailable, got %v", err)
	}
}
