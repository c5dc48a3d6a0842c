package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gourmet-gateway/user-service/internal/api/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route template. Errors are
// rendered here so the recorded status matches what the client receives.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = unmatchedRoute
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)

			metrics.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
