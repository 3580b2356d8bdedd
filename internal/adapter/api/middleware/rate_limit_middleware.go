package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"civicsolve/internal/infrastructure/ratelimit"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/logger"
	"civicsolve/pkg/response"
)

// RateLimit throttles action per caller: the authenticated user when known, the client IP
// otherwise.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			client := UserID(c)
			if client == "" {
				client = c.RealIP()
			}

			allowed, wait := limiter.Allow(client, action)
			if !allowed {
				logger.Warn("Rate limit hit: client=%s action=%s", client, action)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return response.Error(c, errors.TooManyRequests("Too many requests, please slow down"))
			}

			return next(c)
		}
	}
}
