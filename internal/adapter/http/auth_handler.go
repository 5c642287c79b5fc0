package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"assessment-backend/internal/adapter/middleware"
	"assessment-backend/internal/usecase/auth"
)

type AuthHandler struct{ uc *auth.Usecase }

func NewAuthHandler(uc *auth.Usecase) *AuthHandler { return &AuthHandler{uc: uc} }

type requestCodeReq struct {
	Name string `json:"name" validate:"required"`
}

// RequestCode issues a one-time code for the named employee. The code is
// relayed through the operator channel; the response only confirms issuance.
func (h *AuthHandler) RequestCode(c echo.Context) error {
	var req requestCodeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	if _, err := h.uc.RequestCode(c.Request().Context(), strings.TrimSpace(req.Name)); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"issued": true})
}

type loginReq struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	s, err := h.uc.VerifyCode(c.Request().Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Code))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

type adminLoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	s, err := h.uc.VerifyAdmin(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not logged in"})
	}
	if err := h.uc.Logout(c.Request().Context(), s.Token); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"logged_out": true})
}
