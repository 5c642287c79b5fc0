package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"assessment-backend/internal/adapter/middleware"
	domainassess "assessment-backend/internal/domain/assessment"
	"assessment-backend/internal/domain/employee"
	"assessment-backend/internal/usecase/assessment"
	"assessment-backend/internal/usecase/evaluator"
)

// AssessmentHandler serves the employee side of the workflow. The identity
// always comes from the session, never the request body.
type AssessmentHandler struct {
	uc  *assessment.Usecase
	dir employee.Directory
}

func NewAssessmentHandler(uc *assessment.Usecase, dir employee.Directory) *AssessmentHandler {
	return &AssessmentHandler{uc: uc, dir: dir}
}

// Questionnaire returns the questions the logged-in employee must answer,
// the third one being their custom question when the roster sets one.
func (h *AssessmentHandler) Questionnaire(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	emp, err := h.dir.Lookup(c.Request().Context(), s.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"questions": []string{
			evaluator.QuestionChallenge,
			evaluator.QuestionSOP,
			evaluator.ThirdQuestion(emp.CustomQuestion),
		},
		"self_rating_range": []int{1, 10},
	})
}

// OpenSubmission returns the employee's own open submission, 404 when none.
func (h *AssessmentHandler) OpenSubmission(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	sub, err := h.uc.FindOpenSubmission(c.Request().Context(), s.Name)
	if err != nil {
		return fail(c, err)
	}
	if sub == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "no open submission"})
	}
	return c.JSON(http.StatusOK, assessment.ToDTO(sub))
}

type submitReq struct {
	ChallengeAnswer string `json:"challenge_answer" validate:"required"`
	SOPAnswer       string `json:"sop_answer" validate:"required"`
	CustomAnswer    string `json:"custom_answer" validate:"required"`
	SelfRating      int    `json:"self_rating" validate:"required,min=1,max=10"`
}

func (h *AssessmentHandler) Submit(c echo.Context) error {
	s, _ := middleware.CurrentSession(c)
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	sub, err := h.uc.SubmitQuestionnaire(c.Request().Context(), assessment.SubmitInput{
		EmployeeName: s.Name,
		Answers: domainassess.Answers{
			Challenge: req.ChallengeAnswer,
			SOP:       req.SOPAnswer,
			Custom:    req.CustomAnswer,
		},
		SelfRating: req.SelfRating,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, assessment.ToDTO(sub))
}
