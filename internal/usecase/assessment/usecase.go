package assessment

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	domain "assessment-backend/internal/domain/assessment"
	"assessment-backend/internal/domain/employee"
	"assessment-backend/internal/domain/store"
)

// Evaluator runs the two AI passes. Implementations fail closed: they always
// return text and a score, with the unavailable sentinel standing in when the
// backend was unreachable.
type Evaluator interface {
	EvaluateInitial(ctx context.Context, answers domain.Answers, selfRating int, customQuestion string) (string, domain.Score)
	EvaluateFinal(ctx context.Context, answers domain.Answers, initialText, managerReview string, managerScore int) (string, domain.Score)
}

// Usecase owns the submission lifecycle: one open submission per employee,
// append-only stage-1 writes, and the single stage-2 update that finalizes a
// record.
//
// The record store gives no cross-call transaction, so every read-then-write
// sequence here carries a race window between two concurrent sessions. With
// one employee submitting once and one admin reviewing at a time this is an
// accepted risk; Finalize narrows it by re-resolving the row and refusing
// rows that were finalized in the meantime.
type Usecase struct {
	dir   employee.Directory
	table store.TableStore
	eval  Evaluator
	now   func() time.Time
}

func NewUsecase(dir employee.Directory, table store.TableStore, eval Evaluator) *Usecase {
	return &Usecase{dir: dir, table: table, eval: eval, now: time.Now}
}

func (u *Usecase) readAll(ctx context.Context) ([]*domain.Submission, error) {
	rows, err := u.table.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	subs := make([]*domain.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, domain.FromRow(row))
	}
	return subs, nil
}

// FindOpenSubmission returns the employee's open submission, or nil when none
// exists. Only the latest record per employee counts: older records without
// stage-2 data are historical cycles, not open work.
func (u *Usecase) FindOpenSubmission(ctx context.Context, employeeName string) (*domain.Submission, error) {
	subs, err := u.readAll(ctx)
	if err != nil {
		return nil, err
	}
	var latest *domain.Submission
	for _, s := range subs {
		if s.EmployeeName == employeeName {
			latest = s
		}
	}
	if latest == nil || !latest.Open() {
		return nil, nil
	}
	return latest, nil
}

// SubmitQuestionnaire runs the stage-1 flow: authorization and duplicate
// checks first (cheap, local), then the initial AI pass, then the append.
// A failed AI pass still appends — the error text and unavailable score are
// stored so the manager can pick the record up manually.
func (u *Usecase) SubmitQuestionnaire(ctx context.Context, in SubmitInput) (*domain.Submission, error) {
	name := strings.TrimSpace(in.EmployeeName)

	emp, err := u.dir.Lookup(ctx, name)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return nil, domain.ErrNotAuthorized
		}
		return nil, err
	}
	if !emp.CanAssess {
		return nil, domain.ErrNotAuthorized
	}

	if in.SelfRating < 1 || in.SelfRating > 10 {
		return nil, errors.New("self rating must be between 1 and 10")
	}
	if strings.TrimSpace(in.Answers.Challenge) == "" ||
		strings.TrimSpace(in.Answers.SOP) == "" ||
		strings.TrimSpace(in.Answers.Custom) == "" {
		return nil, errors.New("all questionnaire answers are required")
	}

	open, err := u.FindOpenSubmission(ctx, name)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("%w for %s (submitted %s)", domain.ErrDuplicateSubmission, name, open.SubmittedAt)
	}

	text, score := u.eval.EvaluateInitial(ctx, in.Answers, in.SelfRating, emp.CustomQuestion)

	sub := &domain.Submission{
		SubmittedAt:    u.now().Format(domain.TimestampLayout),
		EmployeeName:   name,
		Answers:        in.Answers,
		SelfRating:     in.SelfRating,
		InitialAIText:  text,
		InitialAIScore: score,
	}
	if err := u.table.Append(ctx, sub.Cells()); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return sub, nil
}

// ListPending returns every submission whose final score cell is still empty,
// in store order (oldest first, the store being append-only).
func (u *Usecase) ListPending(ctx context.Context) ([]*domain.Submission, error) {
	subs, err := u.readAll(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*domain.Submission, 0, len(subs))
	for _, s := range subs {
		if s.FinalAIScore.Cell() == "" {
			pending = append(pending, s)
		}
	}
	return pending, nil
}

// Locate re-resolves the physical row of a submission by employee name and
// original timestamp. No index is kept between listing and acting: the table
// may have grown in the meantime and positions from a stale listing are not
// trusted. Two same-second submissions by one employee would defeat the key;
// the duplicate-submission guard makes that a non-case in practice.
func (u *Usecase) Locate(ctx context.Context, employeeName, submittedAt string) (*domain.Submission, error) {
	subs, err := u.readAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		if s.EmployeeName == employeeName && s.SubmittedAt == submittedAt {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w (%s @ %s)", domain.ErrRecordNotFound, employeeName, submittedAt)
}

// FinalizeReview runs the stage-2 flow: validate manager input, re-resolve
// the row, run the final AI pass, then write all four stage-2 cells as one
// store update. Nothing is written until the evaluation completed, and a
// store failure means no cell was changed.
func (u *Usecase) FinalizeReview(ctx context.Context, in FinalizeInput) (*domain.Submission, error) {
	review := strings.TrimSpace(in.Review)
	if review == "" || in.Score < 0 || in.Score > 100 {
		return nil, domain.ErrInvalidManagerInput
	}

	sub, err := u.Locate(ctx, strings.TrimSpace(in.EmployeeName), in.SubmittedAt)
	if err != nil {
		return nil, err
	}
	if !sub.Open() {
		return nil, domain.ErrConflict
	}

	text, score := u.eval.EvaluateFinal(ctx, sub.Answers, sub.InitialAIText, review, in.Score)

	updates := map[int]string{
		domain.ColManagerReview: review,
		domain.ColManagerScore:  strconv.Itoa(in.Score),
		domain.ColFinalAIText:   text,
		domain.ColFinalAIScore:  score.Cell(),
	}
	if err := u.table.UpdateCells(ctx, sub.Position, updates); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	sub.ManagerReview = review
	sub.ManagerScore = domain.NewScore(in.Score)
	sub.FinalAIText = text
	sub.FinalAIScore = score
	return sub, nil
}

// utf8BOM makes spreadsheet tools pick up the encoding of the export.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportCSV renders the whole assessment table, header included, as a
// UTF-8-with-BOM delimited file.
func (u *Usecase) ExportCSV(ctx context.Context) ([]byte, error) {
	header, err := u.table.Header(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	rows, err := u.table.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row.Cells); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
