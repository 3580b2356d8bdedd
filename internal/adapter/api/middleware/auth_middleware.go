package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"civicsolve/internal/infrastructure/firebase"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/response"
)

const (
	ContextKeyUID   = "uid"
	ContextKeyEmail = "email"
)

// TokenVerifier resolves a bearer token to the identity behind it.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*firebase.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c)
		if !ok {
			return response.Error(c, errors.AuthRequired())
		}

		identity, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		setIdentity(c, identity)
		return next(c)
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present and otherwise
// lets the request through anonymously.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token, ok := bearerToken(c); ok {
			if identity, err := m.verifier.VerifyToken(c.Request().Context(), token); err == nil {
				setIdentity(c, identity)
			}
		}
		return next(c)
	}
}

// QueryTokenAuth authenticates from the "token" query parameter, for browser websockets
// that cannot send headers.
func (m *AuthMiddleware) QueryTokenAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" {
			return m.Authenticate(next)(c)
		}

		identity, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		setIdentity(c, identity)
		return next(c)
	}
}

// UserID is the authenticated caller, or "" for anonymous requests.
func UserID(c echo.Context) string {
	uid, _ := c.Get(ContextKeyUID).(string)
	return uid
}

func bearerToken(c echo.Context) (string, bool) {
	parts := strings.Fields(c.Request().Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func setIdentity(c echo.Context, identity *firebase.Identity) {
	c.Set(ContextKeyUID, identity.UID)
	if identity.Email != "" {
		c.Set(ContextKeyEmail, identity.Email)
	}
}
