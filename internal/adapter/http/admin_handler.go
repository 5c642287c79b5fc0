package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"assessment-backend/internal/usecase/assessment"
)

// AdminHandler serves the manager side: pending listing, finalization and the
// CSV export.
type AdminHandler struct{ uc *assessment.Usecase }

func NewAdminHandler(uc *assessment.Usecase) *AdminHandler { return &AdminHandler{uc: uc} }

func (h *AdminHandler) ListPending(c echo.Context) error {
	subs, err := h.uc.ListPending(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	out := make([]*assessment.SubmissionDTO, 0, len(subs))
	for _, s := range subs {
		out = append(out, assessment.ToDTO(s))
	}
	return c.JSON(http.StatusOK, out)
}

type finalizeReq struct {
	EmployeeName string `json:"employee_name" validate:"required"`
	SubmittedAt  string `json:"submitted_at" validate:"required,tscell"`
	Review       string `json:"review" validate:"required"`
	Score        int    `json:"score" validate:"min=0,max=100"`
}

func (h *AdminHandler) Finalize(c echo.Context) error {
	var req finalizeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	sub, err := h.uc.FinalizeReview(c.Request().Context(), assessment.FinalizeInput{
		EmployeeName: req.EmployeeName,
		SubmittedAt:  req.SubmittedAt,
		Review:       req.Review,
		Score:        req.Score,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, assessment.ToDTO(sub))
}

func (h *AdminHandler) ExportCSV(c echo.Context) error {
	data, err := h.uc.ExportCSV(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="assessment_report.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
