package assessment

import (
	domain "assessment-backend/internal/domain/assessment"
)

type SubmitInput struct {
	EmployeeName string
	Answers      domain.Answers
	SelfRating   int
}

type FinalizeInput struct {
	EmployeeName string
	SubmittedAt  string
	Review       string
	Score        int
}

type SubmissionDTO struct {
	SubmittedAt    string         `json:"submitted_at"`
	EmployeeName   string         `json:"employee_name"`
	Answers        domain.Answers `json:"answers"`
	SelfRating     int            `json:"self_rating"`
	InitialAIText  string         `json:"initial_ai_text"`
	InitialAIScore string         `json:"initial_ai_score"`
	ManagerReview  string         `json:"manager_review,omitempty"`
	ManagerScore   string         `json:"manager_score,omitempty"`
	FinalAIText    string         `json:"final_ai_text,omitempty"`
	FinalAIScore   string         `json:"final_ai_score,omitempty"`
	Finalized      bool           `json:"finalized"`
}

func ToDTO(s *domain.Submission) *SubmissionDTO {
	return &SubmissionDTO{
		SubmittedAt:    s.SubmittedAt,
		EmployeeName:   s.EmployeeName,
		Answers:        s.Answers,
		SelfRating:     s.SelfRating,
		InitialAIText:  s.InitialAIText,
		InitialAIScore: s.InitialAIScore.Cell(),
		ManagerReview:  s.ManagerReview,
		ManagerScore:   s.ManagerScore.Cell(),
		FinalAIText:    s.FinalAIText,
		FinalAIScore:   s.FinalAIScore.Cell(),
		Finalized:      !s.Open(),
	}
}
