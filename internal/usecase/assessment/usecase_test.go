package assessment

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "assessment-backend/internal/domain/assessment"
	"assessment-backend/internal/domain/employee"
	"assessment-backend/internal/testutil/directorymock"
	"assessment-backend/internal/testutil/evalmock"
	"assessment-backend/internal/testutil/storemock"
)

func fixedRoster() *directorymock.Directory {
	return directorymock.Fixed(
		&employee.Employee{Name: "王小明", CanAssess: true, Tenure: "3", Grade: "P2"},
		&employee.Employee{Name: "李大華", CanAssess: false},
		&employee.Employee{Name: "陳美麗", CanAssess: true, CustomQuestion: "說明你對跨部門支援的看法。"},
	)
}

func submitInput(name string) SubmitInput {
	return SubmitInput{
		EmployeeName: name,
		Answers:      domain.Answers{Challenge: "a", SOP: "b", Custom: "c"},
		SelfRating:   8,
	}
}

func scoredEvaluator() *evalmock.Evaluator {
	return &evalmock.Evaluator{
		EvaluateInitialFn: func(ctx context.Context, answers domain.Answers, selfRating int, customQuestion string) (string, domain.Score) {
			return "1. 合格判定：合格\n5. 綜合評分：92", domain.NewScore(92)
		},
		EvaluateFinalFn: func(ctx context.Context, answers domain.Answers, initialText, managerReview string, managerScore int) (string, domain.Score) {
			return "1. 最終評語：穩定\n3. 最終分數：88", domain.NewScore(88)
		},
	}
}

func TestSubmitQuestionnaire_AppendsOpenRecord(t *testing.T) {
	mem := storemock.NewMem(domain.Headers)
	uc := NewUsecase(fixedRoster(), mem, scoredEvaluator())

	sub, err := uc.SubmitQuestionnaire(context.Background(), submitInput("王小明"))
	if err != nil {
		t.Fatalf("SubmitQuestionnaire err: %v", err)
	}
	if got := sub.InitialAIScore.Cell(); got != "92" {
		t.Fatalf("initial score = %q, want 92", got)
	}
	if !sub.Open() {
		t.Fatalf("fresh submission must be open")
	}
	if len(mem.Rows) != 1 {
		t.Fatalf("rows appended = %d, want 1", len(mem.Rows))
	}
	// stage-2 cells blank on the stored row
	row := mem.Rows[0]
	for col := domain.ColManagerReview; col <= domain.ColFinalAIScore; col++ {
		if row[col-1] != "" {
			t.Fatalf("stage-2 cell %d populated at creation: %q", col, row[col-1])
		}
	}

	open, err := uc.FindOpenSubmission(context.Background(), "王小明")
	if err != nil {
		t.Fatalf("FindOpenSubmission err: %v", err)
	}
	if open == nil || open.SubmittedAt != sub.SubmittedAt {
		t.Fatalf("open submission not found after submit: %+v", open)
	}
}

func TestSubmitQuestionnaire_RejectsSecondWhileOpen(t *testing.T) {
	mem := storemock.NewMem(domain.Headers)
	uc := NewUsecase(fixedRoster(), mem, scoredEvaluator())

	if _, err := uc.SubmitQuestionnaire(context.Background(), submitInput("王小明")); err != nil {
		t.Fatalf("first submit err: %v", err)
	}
	_, err := uc.SubmitQuestionnaire(context.Background(), submitInput("王小明"))
	if !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("err = %v, want ErrDuplicateSubmission", err)
	}
	if len(mem.Rows) != 1 {
		t.Fatalf("duplicate submit must not append, rows = %d", len(mem.Rows))
	}
}

func TestSubmitQuestionnaire_AuthorizationGate(t *testing.T) {
	eval := &evalmock.Evaluator{
		EvaluateInitialFn: func(ctx context.Context, answers domain.Answers, selfRating int, customQuestion string) (string, domain.Score) {
			t.Fatal("evaluator must not run for unauthorized employees")
			return "", domain.Score{}
		},
	}
	uc := NewUsecase(fixedRoster(), storemock.NewMem(domain.Headers), eval)

	for _, name := range []string{"李大華", "查無此人"} {
		_, err := uc.SubmitQuestionnaire(context.Background(), submitInput(name))
		if !errors.Is(err, domain.ErrNotAuthorized) {
			t.Fatalf("%s: err = %v, want ErrNotAuthorized", name, err)
		}
	}
}

func TestSubmitQuestionnaire_StoresFailClosedEvaluation(t *testing.T) {
	// Backend timed out: the evaluator hands back error text and an
	// unavailable score, and the record is appended regardless.
	eval := &evalmock.Evaluator{
		EvaluateInitialFn: func(ctx context.Context, answers domain.Answers, selfRating int, customQuestion string) (string, domain.Score) {
			return "AI 評估時發生連線或服務錯誤：context deadline exceeded", domain.NoScore()
		},
	}
	mem := storemock.NewMem(domain.Headers)
	uc := NewUsecase(fixedRoster(), mem, eval)

	sub, err := uc.SubmitQuestionnaire(context.Background(), submitInput("王小明"))
	if err != nil {
		t.Fatalf("SubmitQuestionnaire err: %v", err)
	}
	if !strings.Contains(sub.InitialAIText, "連線或服務錯誤") {
		t.Fatalf("initial text should describe the failure, got %q", sub.InitialAIText)
	}
	if sub.InitialAIScore.Cell() != domain.UnavailableCell {
		t.Fatalf("initial score = %q, want %q", sub.InitialAIScore.Cell(), domain.UnavailableCell)
	}
	if len(mem.Rows) != 1 {
		t.Fatalf("record must be appended despite backend failure")
	}
}

func TestSubmitQuestionnaire_CustomQuestionReachesEvaluator(t *testing.T) {
	var gotQuestion string
	eval := scoredEvaluator()
	eval.EvaluateInitialFn = func(ctx context.Context, answers domain.Answers, selfRating int, customQuestion string) (string, domain.Score) {
		gotQuestion = customQuestion
		return "5. 綜合評分：70", domain.NewScore(70)
	}
	uc := NewUsecase(fixedRoster(), storemock.NewMem(domain.Headers), eval)

	if _, err := uc.SubmitQuestionnaire(context.Background(), submitInput("陳美麗")); err != nil {
		t.Fatalf("submit err: %v", err)
	}
	if gotQuestion != "說明你對跨部門支援的看法。" {
		t.Fatalf("custom question not forwarded, got %q", gotQuestion)
	}
}

func TestFindOpenSubmission_OnlyLatestRecordCounts(t *testing.T) {
	mem := storemock.NewMem(domain.Headers)
	// Historical record from before stage-2 columns existed: short row,
	// no stage-2 data, but an even older cycle — not open.
	_ = mem.Append(context.Background(), []string{"2024-03-01 10:00:00", "王小明", "x", "y", "z", "7", "old text", "80"})
	// Latest cycle, properly finalized.
	_ = mem.Append(context.Background(), []string{"2025-06-01 10:00:00", "王小明", "x", "y", "z", "8", "text", "85", "good", "84", "final", "86"})
	uc := NewUsecase(fixedRoster(), mem, scoredEvaluator())

	open, err := uc.FindOpenSubmission(context.Background(), "王小明")
	if err != nil {
		t.Fatalf("FindOpenSubmission err: %v", err)
	}
	if open != nil {
		t.Fatalf("finalized latest record must not count as open, got %+v", open)
	}

	// A new cycle may now be submitted.
	if _, err := uc.SubmitQuestionnaire(context.Background(), submitInput("王小明")); err != nil {
		t.Fatalf("submit after finalized cycle err: %v", err)
	}
}

func TestFinalizeReview_WritesAllFourCellsAtOnce(t *testing.T) {
	mem := storemock.NewMem(domain.Headers)
	uc := NewUsecase(fixedRoster(), mem, scoredEvaluator())

	sub, err := uc.SubmitQuestionnaire(context.Background(), submitInput("王小明"))
	if err != nil {
		t.Fatalf("submit err: %v", err)
	}

	done, err := uc.FinalizeReview(context.Background(), FinalizeInput{
		EmployeeName: "王小明",
		SubmittedAt:  sub.SubmittedAt,
		Review:       "good",
		Score:        80,
	})
	if err != nil {
		t.Fatalf("FinalizeReview err: %v", err)
	}
	if done.FinalAIScore.Cell() != "88" {
		t.Fatalf("final score = %q, want 88", done.FinalAIScore.Cell())
	}
	if done.Open() {
		t.Fatalf("finalized submission still reports open")
	}

	row := mem.Rows[0]
	want := map[int]string{
		domain.ColManagerReview: "good",
		domain.ColManagerScore:  "80",
		domain.ColFinalAIScore:  "88",
	}
	for col, v := range want {
		if row[col-1] != v {
			t.Fatalf("cell %d = %q, want %q", col, row[col-1], v)
		}
	}
	if row[domain.ColFinalAIText-1] == "" {
		t.Fatalf("final AI text cell empty after finalize")
	}

	pending, err := uc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending err: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("finalized record still pending: %+v", pending)
	}
}

func TestFinalizeReview_FailClosedFinalPassStillCloses(t *testing.T) {
	// Backend down during the final pass: the record is finalized with the
	// failure text and the unavailable score, and leaves the pending list.
	eval := scoredEvaluator()
	eval.EvaluateFinalFn = func(ctx context.Context, answers domain.Answers, initialText, managerReview string, managerScore int) (string, domain.Score) {
		return "AI 評估時發生連線或服務錯誤：connection refused", domain.NoScore()
	}
	mem := storemock.NewMem(domain.Headers)
	uc := NewUsecase(fixedRoster(), mem, eval)

	sub, err := uc.SubmitQuestionnaire(context.Background(), submitInput("王小明"))
	if err != nil {
		t.Fatalf("submit err: %v", err)
	}
	done, err := uc.FinalizeReview(context.Background(), FinalizeInput{
		EmployeeName: "王小明",
		SubmittedAt:  sub.SubmittedAt,
		Review:       "good",
		Score:        80,
	})
	if err != nil {
		t.Fatalf("FinalizeReview err: %v", err)
	}
	if done.FinalAIScore.Cell() != domain.UnavailableCell {
		t.Fatalf("final score = %q, want %q", done.FinalAIScore.Cell(), domain.UnavailableCell)
	}
	if done.Open() {
		t.Fatalf("record must close even when the final pass fails")
	}
	if got := mem.Rows[0][domain.ColFinalAIScore-1]; got != domain.UnavailableCell {
		t.Fatalf("stored final score cell = %q, want %q", got, domain.UnavailableCell)
	}

	pending, err := uc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending err: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("fail-closed finalize must leave the pending list, got %+v", pending)
	}
}

func TestFinalizeReview_AtomicUnderStoreFailure(t *testing.T) {
	// The write path is a single batch call; when it fails the engine
	// reports failure and no cell-by-cell partial write has happened.
	mem := storemock.NewMem(domain.Headers)
	_ = mem.Append(context.Background(), (&domain.Submission{
		SubmittedAt:  "2026-02-01 09:00:00",
		EmployeeName: "王小明",
		Answers:      domain.Answers{Challenge: "a", SOP: "b", Custom: "c"},
		SelfRating:   8,
	}).Cells())

	var singleCalls, batchCalls int
	st := &storemock.Store{
		ReadAllFn: mem.ReadAll,
		UpdateCellFn: func(ctx context.Context, position, column int, value string) error {
			singleCalls++
			return nil
		},
		UpdateCellsFn: func(ctx context.Context, position int, updates map[int]string) error {
			batchCalls++
			return errors.New("connection reset")
		},
	}

	uc := NewUsecase(fixedRoster(), st, scoredEvaluator())
	_, err := uc.FinalizeReview(context.Background(), FinalizeInput{
		EmployeeName: "王小明",
		SubmittedAt:  "2026-02-01 09:00:00",
		Review:       "ok",
		Score:        70,
	})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if batchCalls != 1 || singleCalls != 0 {
		t.Fatalf("stage-2 must be one batch write, got batch=%d single=%d", batchCalls, singleCalls)
	}
}

func TestFinalizeReview_InvalidManagerInput(t *testing.T) {
	eval := &evalmock.Evaluator{
		EvaluateFinalFn: func(ctx context.Context, answers domain.Answers, initialText, managerReview string, managerScore int) (string, domain.Score) {
			t.Fatal("evaluator must not run on invalid manager input")
			return "", domain.Score{}
		},
	}
	uc := NewUsecase(fixedRoster(), storemock.NewMem(domain.Headers), eval)

	cases := []FinalizeInput{
		{EmployeeName: "王小明", SubmittedAt: "2026-02-01 09:00:00", Review: "", Score: 80},
		{EmployeeName: "王小明", SubmittedAt: "2026-02-01 09:00:00", Review: "   ", Score: 80},
		{EmployeeName: "王小明", SubmittedAt: "2026-02-01 09:00:00", Review: "fine", Score: -1},
		{EmployeeName: "王小明", SubmittedAt: "2026-02-01 09:00:00", Review: "fine", Score: 101},
	}
	for i, in := range cases {
		if _, err := uc.FinalizeReview(context.Background(), in); !errors.Is(err, domain.ErrInvalidManagerInput) {
			t.Fatalf("case %d: err = %v, want ErrInvalidManagerInput", i, err)
		}
	}
}

func TestFinalizeReview_RecordNotFound(t *testing.T) {
	uc := NewUsecase(fixedRoster(), storemock.NewMem(domain.Headers), scoredEvaluator())
	_, err := uc.FinalizeReview(context.Background(), FinalizeInput{
		EmployeeName: "王小明",
		SubmittedAt:  "2026-02-01 09:00:00",
		Review:       "good",
		Score:        80,
	})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestFinalizeReview_ConflictOnAlreadyFinalizedRow(t *testing.T) {
	mem := storemock.NewMem(domain.Headers)
	_ = mem.Append(context.Background(), []string{"2026-02-01 09:00:00", "王小明", "a", "b", "c", "8", "t", "90", "done", "85", "final", "87"})
	uc := NewUsecase(fixedRoster(), mem, scoredEvaluator())

	_, err := uc.FinalizeReview(context.Background(), FinalizeInput{
		EmployeeName: "王小明",
		SubmittedAt:  "2026-02-01 09:00:00",
		Review:       "again",
		Score:        60,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestListPending_StoreOrderAcrossEmployees(t *testing.T) {
	mem := storemock.NewMem(domain.Headers)
	_ = mem.Append(context.Background(), []string{"2026-01-01 08:00:00", "王小明", "a", "b", "c", "7", "t", "80", "", "", "", ""})
	_ = mem.Append(context.Background(), []string{"2026-01-02 08:00:00", "陳美麗", "a", "b", "c", "9", "t", domain.UnavailableCell, "", "", "", ""})
	_ = mem.Append(context.Background(), []string{"2026-01-03 08:00:00", "李大華", "a", "b", "c", "5", "t", "60", "ok", "70", "f", "72"})
	uc := NewUsecase(fixedRoster(), mem, scoredEvaluator())

	pending, err := uc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending err: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].EmployeeName != "王小明" || pending[1].EmployeeName != "陳美麗" {
		t.Fatalf("pending out of store order: %s, %s", pending[0].EmployeeName, pending[1].EmployeeName)
	}
}

func TestExportCSV_BOMAndContents(t *testing.T) {
	mem := storemock.NewMem(domain.Headers)
	_ = mem.Append(context.Background(), []string{"2026-01-01 08:00:00", "王小明", "a", "b", "c", "7", "評語,含逗號", "80", "", "", "", ""})
	uc := NewUsecase(fixedRoster(), mem, scoredEvaluator())

	data, err := uc.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("ExportCSV err: %v", err)
	}
	if !strings.HasPrefix(string(data), "\xef\xbb\xbf") {
		t.Fatalf("export missing UTF-8 BOM")
	}
	body := string(data[3:])
	if !strings.HasPrefix(body, strings.Join(domain.Headers, ",")) {
		t.Fatalf("export missing header row: %q", body[:60])
	}
	if !strings.Contains(body, `"評語,含逗號"`) {
		t.Fatalf("comma-bearing cell not quoted: %q", body)
	}
}
