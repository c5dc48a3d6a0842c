package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/gourmet-gateway/user-service/docs"
	"github.com/gourmet-gateway/user-service/internal/api/handler"
	"github.com/gourmet-gateway/user-service/internal/api/middleware"
	"github.com/gourmet-gateway/user-service/internal/core/domain"
	"github.com/gourmet-gateway/user-service/internal/core/ports"
)

// Dependencies are the collaborators the HTTP edge needs. Health maps a
// dependency name to its readiness check.
type Dependencies struct {
	AuthService ports.AuthService
	UserService ports.UserService
	Tokens      ports.TokenVerifier
	Health      map[string]handler.Pinger
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(middleware.Metrics())

	authHandler := handler.NewAuthHandler(deps.AuthService)
	userHandler := handler.NewUserHandler(deps.UserService)
	healthHandler := handler.NewHealthHandler(deps.Health, deps.Log)
	requireIdentity := middleware.RequireIdentity(deps.Tokens)

	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	users := e.Group("/users", requireIdentity)
	users.GET("/me", userHandler.Me)
	users.PUT("/location", userHandler.UpdateLocation)

	admin := e.Group("/admin", requireIdentity, middleware.RequireRole(domain.RoleAdmin))
	admin.GET("/users/:username", userHandler.Lookup)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
