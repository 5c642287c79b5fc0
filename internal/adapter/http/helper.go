package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	domain "assessment-backend/internal/domain/assessment"
	"assessment-backend/internal/domain/employee"
	"assessment-backend/internal/usecase/auth"
)

// statusOf maps domain error kinds to HTTP statuses. Unknown errors land on
// 400 rather than 500: by the time an error reaches a handler it has already
// been converted from a raw transport failure.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrDuplicateSubmission), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRecordNotFound), errors.Is(err, employee.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidManagerInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, auth.ErrNoCodeIssued),
		errors.Is(err, auth.ErrCodeMismatch),
		errors.Is(err, auth.ErrBadCredentials),
		errors.Is(err, auth.ErrSessionNotFound):
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

func fail(c echo.Context, err error) error {
	return c.JSON(statusOf(err), ErrorResponse{Error: err.Error()})
}

// ---- helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
