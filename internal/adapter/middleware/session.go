package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"assessment-backend/internal/usecase/auth"
)

const sessionContextKey = "session"

// SessionResolver resolves a bearer token to a session.
type SessionResolver interface {
	Get(ctx context.Context, token string) (*auth.Session, error)
}

// RequireSession authenticates the request from its Authorization header and,
// when roles are given, authorizes against them. The resolved session is
// stashed in the echo context for handlers.
func RequireSession(resolver SessionResolver, roles ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			s, err := resolver.Get(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired session"})
			}
			if len(roles) > 0 && !roleAllowed(s.Role, roles) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient role"})
			}
			c.Set(sessionContextKey, s)
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func roleAllowed(got auth.Role, allowed []auth.Role) bool {
	for _, r := range allowed {
		if got == r {
			return true
		}
	}
	return false
}

// CurrentSession returns the session placed by RequireSession.
func CurrentSession(c echo.Context) (*auth.Session, bool) {
	s, ok := c.Get(sessionContextKey).(*auth.Session)
	return s, ok
}
