package evalmock

import (
	"context"

	"assessment-backend/internal/domain/assessment"
)

// Evaluator is a function-backed mock for the lifecycle usecase's Evaluator
// dependency. The default behaviors mimic the fail-closed contract: text is
// always returned.
type Evaluator struct {
	EvaluateInitialFn func(ctx context.Context, answers assessment.Answers, selfRating int, customQuestion string) (string, assessment.Score)
	EvaluateFinalFn   func(ctx context.Context, answers assessment.Answers, initialText, managerReview string, managerScore int) (string, assessment.Score)
}

func (m *Evaluator) EvaluateInitial(ctx context.Context, answers assessment.Answers, selfRating int, customQuestion string) (string, assessment.Score) {
	if m.EvaluateInitialFn != nil {
		return m.EvaluateInitialFn(ctx, answers, selfRating, customQuestion)
	}
	return "initial evaluation", assessment.NoScore()
}

func (m *Evaluator) EvaluateFinal(ctx context.Context, answers assessment.Answers, initialText, managerReview string, managerScore int) (string, assessment.Score) {
	if m.EvaluateFinalFn != nil {
		return m.EvaluateFinalFn(ctx, answers, initialText, managerReview, managerScore)
	}
	return "final evaluation", assessment.NoScore()
}
