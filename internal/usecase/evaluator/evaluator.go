package evaluator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"assessment-backend/internal/domain/assessment"
)

// Fixed questionnaire. Question three is replaced by the employee's custom
// question when the roster configures one.
const (
	QuestionChallenge  = "本季度最具挑戰的維修案例與解決過程？（詳述診斷邏輯）"
	QuestionSOP        = "對於目前 SOP 或現場維運流程有何具體優化建議？"
	QuestionDefaultOrg = "自評本季度配合度與團隊協作表現，請提供具體案例。"
)

// Labeled score lines the two passes are instructed to emit.
var (
	reInitialScore = regexp.MustCompile(`綜合評分[：:]\s*(\d+)`)
	reFinalScore   = regexp.MustCompile(`最終分數[：:]\s*(\d+)`)
)

// Service builds evaluation prompts, runs them through the generation
// backend, and extracts scores from the free-form output. Backend failures
// never propagate: the returned text describes the failure and the score is
// the unavailable sentinel, so the workflow can continue under a human.
type Service struct {
	gen Generator
	log *logrus.Logger
}

func NewService(gen Generator, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{gen: gen, log: log}
}

// ThirdQuestion returns the effective wording of question three.
func ThirdQuestion(customQuestion string) string {
	if strings.TrimSpace(customQuestion) != "" {
		return customQuestion
	}
	return QuestionDefaultOrg
}

func initialPrompt(answers assessment.Answers, selfRating int, customQuestion string) string {
	var b strings.Builder
	b.WriteString("你現在是一位專業、嚴格且務實的技術維運主管。請針對以下員工的考核問卷回答，進行評估：\n\n")
	fmt.Fprintf(&b, "Q1. %s\n回答：%s\n\n", QuestionChallenge, answers.Challenge)
	fmt.Fprintf(&b, "Q2. %s\n回答：%s\n\n", QuestionSOP, answers.SOP)
	fmt.Fprintf(&b, "Q3. %s\n回答：%s\n\n", ThirdQuestion(customQuestion), answers.Custom)
	fmt.Fprintf(&b, "員工自評配合度（1-10）：%d\n\n", selfRating)
	b.WriteString("請依照以下格式，簡潔地輸出結構化內容：\n")
	b.WriteString("1. 合格判定：(合格 或 不合格)\n")
	b.WriteString("2. 關鍵優點：(列點說明)\n")
	b.WriteString("3. 待改進處：(列點說明)\n")
	b.WriteString("4. 追問建議：(提出 2 個管理者應該追問該員工的問題)\n")
	b.WriteString("5. 綜合評分：(純數字，分數範圍 0-100)\n")
	return b.String()
}

func finalPrompt(answers assessment.Answers, initialText, managerReview string, managerScore int) string {
	var b strings.Builder
	b.WriteString("你現在是一位資深的人資與技術主管，負責彙整職等考核的最終結果。請綜合以下資料，給出最終評語：\n\n")
	fmt.Fprintf(&b, "【員工問卷回答】\nQ1：%s\nQ2：%s\nQ3：%s\n\n", answers.Challenge, answers.SOP, answers.Custom)
	fmt.Fprintf(&b, "【AI 初評】\n%s\n\n", initialText)
	fmt.Fprintf(&b, "【主管評語】\n%s\n\n", managerReview)
	fmt.Fprintf(&b, "【主管評分】\n%d\n\n", managerScore)
	b.WriteString("請依照以下格式，簡潔地輸出結構化內容：\n")
	b.WriteString("1. 最終評語：(綜合判斷)\n")
	b.WriteString("2. 發展建議：(列點說明)\n")
	b.WriteString("3. 最終分數：(純數字，分數範圍 0-100)\n")
	return b.String()
}

// ExtractScore pulls the first digit run after the labeled field out of the
// generation text. Absent or malformed labels yield the unavailable score,
// never an error.
func ExtractScore(re *regexp.Regexp, text string) assessment.Score {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return assessment.NoScore()
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return assessment.NoScore()
	}
	return assessment.NewScore(v)
}

func (s *Service) run(ctx context.Context, prompt string, re *regexp.Regexp) (string, assessment.Score) {
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.log.WithError(err).Warn("evaluator: generation backend failed")
		return fmt.Sprintf("AI 評估時發生連線或服務錯誤：%v", err), assessment.NoScore()
	}
	return text, ExtractScore(re, text)
}

// EvaluateInitial runs the strict-reviewer pass over a fresh questionnaire.
func (s *Service) EvaluateInitial(ctx context.Context, answers assessment.Answers, selfRating int, customQuestion string) (string, assessment.Score) {
	return s.run(ctx, initialPrompt(answers, selfRating, customQuestion), reInitialScore)
}

// EvaluateFinal runs the synthesis pass over the full review bundle.
func (s *Service) EvaluateFinal(ctx context.Context, answers assessment.Answers, initialText, managerReview string, managerScore int) (string, assessment.Score) {
	return s.run(ctx, finalPrompt(answers, initialText, managerReview, managerScore), reFinalScore)
}
