package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gourmet-gateway/user-service/internal/api/metrics"
	"github.com/gourmet-gateway/user-service/internal/core/domain"
	"github.com/gourmet-gateway/user-service/internal/core/ports"
)

const bearerChallenge = `Bearer realm="user-service"`

// RequireIdentity rejects requests without a valid bearer token.
func RequireIdentity(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return identity(verifier, true)
}

// OptionalIdentity lets requests without an Authorization header through as
// anonymous. A header that is present must still carry a valid token.
func OptionalIdentity(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return identity(verifier, false)
}

func identity(verifier ports.TokenVerifier, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				if !required {
					metrics.TokenVerificationsTotal.WithLabelValues("anonymous").Inc()
					return next(c)
				}
				return unauthorized(c, "missing authorization header")
			}

			token, ok := bearerToken(header)
			if !ok {
				metrics.TokenVerificationsTotal.WithLabelValues("malformed_header").Inc()
				return unauthorized(c, "invalid authorization header")
			}

			principal, err := verifier.Verify(token)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return unauthorized(c, "invalid token")
			}
			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()

			req := c.Request()
			c.SetRequest(req.WithContext(domain.ContextWithPrincipal(req.Context(), principal)))
			return next(c)
		}
	}
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, bearerChallenge)
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
