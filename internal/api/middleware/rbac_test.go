package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

func runRBAC(t *testing.T, p *domain.Principal, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if p != nil {
		req = req.WithContext(domain.ContextWithPrincipal(req.Context(), p))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequireRole(domain.RoleAdmin)(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestRequireRole_Allows(t *testing.T) {
	called := false
	rec := runRBAC(t, &domain.Principal{Username: "admin", Role: domain.RoleAdmin}, func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Forbids(t *testing.T) {
	rec := runRBAC(t, &domain.Principal{Username: "user", Role: domain.RoleUser}, mustNotRun(t))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_Anonymous(t *testing.T) {
	rec := runRBAC(t, nil, mustNotRun(t))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
