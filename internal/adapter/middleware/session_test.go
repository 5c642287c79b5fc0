package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"assessment-backend/internal/usecase/auth"
)

type resolverFn func(ctx context.Context, token string) (*auth.Session, error)

func (f resolverFn) Get(ctx context.Context, token string) (*auth.Session, error) {
	return f(ctx, token)
}

var staticResolver resolverFn = func(ctx context.Context, token string) (*auth.Session, error) {
	if token == "good-token" {
		return &auth.Session{Token: token, Name: "王小明", Role: auth.RoleEmployee}, nil
	}
	return nil, auth.ErrSessionNotFound
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler err: %v", err)
	}
	return rec, reached
}

func TestRequireSession_MissingToken(t *testing.T) {
	for _, header := range []string{"", "Basic abc", "Bearertoken", "good-token"} {
		rec, reached := invoke(t, RequireSession(staticResolver), header)
		if rec.Code != http.StatusUnauthorized || reached {
			t.Errorf("header %q: code = %d, reached = %v", header, rec.Code, reached)
		}
	}
}

func TestRequireSession_UnknownToken(t *testing.T) {
	rec, reached := invoke(t, RequireSession(staticResolver), "Bearer bogus")
	if rec.Code != http.StatusUnauthorized || reached {
		t.Fatalf("code = %d, reached = %v", rec.Code, reached)
	}
}

func TestRequireSession_RoleMismatch(t *testing.T) {
	rec, reached := invoke(t, RequireSession(staticResolver, auth.RoleAdmin), "Bearer good-token")
	if rec.Code != http.StatusForbidden || reached {
		t.Fatalf("code = %d, reached = %v", rec.Code, reached)
	}
}

func TestRequireSession_PassThroughSetsSession(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireSession(staticResolver, auth.RoleEmployee)(func(c echo.Context) error {
		s, ok := CurrentSession(c)
		if !ok {
			t.Fatal("session missing from context")
		}
		if s.Name != "王小明" || s.Role != auth.RoleEmployee {
			t.Fatalf("unexpected session: %+v", s)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler err: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
}

func TestRequireSession_NoRolesMeansAnyRole(t *testing.T) {
	rec, reached := invoke(t, RequireSession(staticResolver), "Bearer good-token")
	if rec.Code != http.StatusOK || !reached {
		t.Fatalf("code = %d, reached = %v", rec.Code, reached)
	}
}
