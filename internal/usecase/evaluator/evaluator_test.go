package evaluator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"assessment-backend/internal/domain/assessment"
)

// mockGen implements Generator.
type mockGen struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
	calls      int
}

func (m *mockGen) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}
	return "", errors.New("not implemented")
}

var sampleAnswers = assessment.Answers{Challenge: "a", SOP: "b", Custom: "c"}

func TestExtractScore_Initial(t *testing.T) {
	cases := []struct {
		text string
		want assessment.Score
	}{
		{"1. 合格判定：合格\n5. 綜合評分：92", assessment.NewScore(92)},
		{"綜合評分: 75", assessment.NewScore(75)},
		{"綜合評分：  100 分", assessment.NewScore(100)},
		{"沒有任何分數標籤", assessment.NoScore()},
		{"", assessment.NoScore()},
		{"最終分數：88", assessment.NoScore()}, // wrong label for the initial pass
	}
	for _, tc := range cases {
		got := ExtractScore(reInitialScore, tc.text)
		if got != tc.want {
			t.Fatalf("ExtractScore(%q) = %+v, want %+v", tc.text, got, tc.want)
		}
	}
}

func TestExtractScore_Idempotent(t *testing.T) {
	text := "前言 綜合評分：66 後記 綜合評分：99"
	first := ExtractScore(reInitialScore, text)
	for i := 0; i < 5; i++ {
		if got := ExtractScore(reInitialScore, text); got != first {
			t.Fatalf("extraction not stable: %+v vs %+v", got, first)
		}
	}
	if first.Value != 66 {
		t.Fatalf("expected first labeled run (66), got %d", first.Value)
	}
}

func TestEvaluateInitial_PromptAndScore(t *testing.T) {
	var prompt string
	gen := &mockGen{GenerateFn: func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "5. 綜合評分：92", nil
	}}
	svc := NewService(gen, nil)

	text, score := svc.EvaluateInitial(context.Background(), sampleAnswers, 8, "")
	if score != assessment.NewScore(92) {
		t.Fatalf("score = %+v", score)
	}
	if !strings.Contains(text, "92") {
		t.Fatalf("raw text lost: %q", text)
	}
	for _, want := range []string{QuestionChallenge, QuestionSOP, QuestionDefaultOrg, "（1-10）：8", "綜合評分"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("initial prompt missing %q\nprompt: %s", want, prompt)
		}
	}
}

func TestEvaluateInitial_CustomQuestionReplacesThird(t *testing.T) {
	var prompt string
	gen := &mockGen{GenerateFn: func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "綜合評分：50", nil
	}}
	svc := NewService(gen, nil)

	svc.EvaluateInitial(context.Background(), sampleAnswers, 5, "你如何看待值班制度？")
	if !strings.Contains(prompt, "你如何看待值班制度？") {
		t.Fatalf("custom question not in prompt")
	}
	if strings.Contains(prompt, QuestionDefaultOrg) {
		t.Fatalf("default third question should be replaced")
	}
}

func TestEvaluateFinal_PromptCarriesAllInputs(t *testing.T) {
	var prompt string
	gen := &mockGen{GenerateFn: func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "3. 最終分數：88", nil
	}}
	svc := NewService(gen, nil)

	_, score := svc.EvaluateFinal(context.Background(), sampleAnswers, "初評內容", "表現良好", 80)
	if score != assessment.NewScore(88) {
		t.Fatalf("score = %+v", score)
	}
	for _, want := range []string{"初評內容", "表現良好", "80", "最終分數"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("final prompt missing %q", want)
		}
	}
}

func TestEvaluate_FailClosedOnBackendError(t *testing.T) {
	gen := &mockGen{GenerateFn: func(ctx context.Context, p string) (string, error) {
		return "", context.DeadlineExceeded
	}}
	svc := NewService(gen, nil)

	text, score := svc.EvaluateInitial(context.Background(), sampleAnswers, 8, "")
	if !strings.Contains(text, "連線或服務錯誤") {
		t.Fatalf("failure text missing, got %q", text)
	}
	if !score.Unavailable {
		t.Fatalf("score = %+v, want unavailable", score)
	}

	text, score = svc.EvaluateFinal(context.Background(), sampleAnswers, "x", "y", 70)
	if !strings.Contains(text, "連線或服務錯誤") || !score.Unavailable {
		t.Fatalf("final pass not fail-closed: %q %+v", text, score)
	}
}
