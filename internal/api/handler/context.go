package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gourmet-gateway/user-service/internal/core/domain"
)

// ctxPrincipal returns the identity attached by the identity middleware, or
// a 401 when the route was reached without one.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p, ok := domain.PrincipalFromContext(c.Request().Context())
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return p, nil
}
