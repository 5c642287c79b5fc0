package assessment

import (
	"strconv"

	"assessment-backend/internal/domain/store"
)

// TimestampLayout is the cell format of a submission timestamp. It doubles as
// part of the lookup key when a row position is re-resolved, so it must stay
// byte-stable once written.
const TimestampLayout = "2006-01-02 15:04:05"

// Assessment table columns, 1-indexed, fixed order.
const (
	ColTimestamp = iota + 1
	ColEmployeeName
	ColChallengeAnswer
	ColSOPAnswer
	ColCustomAnswer
	ColSelfRating
	ColInitialAIText
	ColInitialAIScore
	ColManagerReview
	ColManagerScore
	ColFinalAIText
	ColFinalAIScore

	NumColumns = ColFinalAIScore
)

// Headers is the header row of the assessment table, aligned with the column
// constants above.
var Headers = []string{
	"時間", "姓名", "挑戰案例", "SOP建議", "自訂問題回覆", "自評分數",
	"AI初評", "AI初評分數", "主管評語", "主管評分", "AI總評", "AI總評分數",
}

// UnavailableCell is the stored form of a score that could not be extracted
// from the evaluation text.
const UnavailableCell = "unavailable"

// Score is the optional numeric result of an evaluation pass. The zero value
// means the field has not been written at all; Unavailable means the pass ran
// but no number could be extracted from its output.
type Score struct {
	Value       int
	Valid       bool
	Unavailable bool
}

func NewScore(v int) Score { return Score{Value: v, Valid: true} }

func NoScore() Score { return Score{Unavailable: true} }

// Cell renders the score in its stored form: digits, the unavailable
// sentinel, or the empty string for an absent field.
func (s Score) Cell() string {
	switch {
	case s.Valid:
		return strconv.Itoa(s.Value)
	case s.Unavailable:
		return UnavailableCell
	default:
		return ""
	}
}

// ParseScoreCell is the inverse of Cell. Any non-numeric, non-empty cell is
// treated as unavailable rather than rejected.
func ParseScoreCell(cell string) Score {
	if cell == "" {
		return Score{}
	}
	if v, err := strconv.Atoi(cell); err == nil {
		return NewScore(v)
	}
	return NoScore()
}

// Answers are the employee-authored questionnaire answers. Custom holds the
// answer to the per-employee custom question, or to the default collaboration
// question when none is configured.
type Answers struct {
	Challenge string `json:"challenge_answer"`
	SOP       string `json:"sop_answer"`
	Custom    string `json:"custom_answer"`
}

// Submission is one review cycle for one employee. Stage-1 fields are written
// once at creation; the four stage-2 fields are written together at
// finalization and stay empty until then.
type Submission struct {
	Position     int
	SubmittedAt  string
	EmployeeName string
	Answers      Answers
	SelfRating   int

	InitialAIText  string
	InitialAIScore Score

	ManagerReview string
	ManagerScore  Score
	FinalAIText   string
	FinalAIScore  Score
}

// Open reports whether the submission still awaits manager review, i.e. none
// of the stage-2 fields have been written.
func (s *Submission) Open() bool {
	return s.ManagerReview == "" &&
		s.ManagerScore.Cell() == "" &&
		s.FinalAIText == "" &&
		s.FinalAIScore.Cell() == ""
}

// Cells renders the submission as an assessment-table row.
func (s *Submission) Cells() []string {
	return []string{
		s.SubmittedAt,
		s.EmployeeName,
		s.Answers.Challenge,
		s.Answers.SOP,
		s.Answers.Custom,
		strconv.Itoa(s.SelfRating),
		s.InitialAIText,
		s.InitialAIScore.Cell(),
		s.ManagerReview,
		s.ManagerScore.Cell(),
		s.FinalAIText,
		s.FinalAIScore.Cell(),
	}
}

// FromRow rebuilds a submission from a stored row. Rows shorter than the
// current column set (records from before a column existed) are padded with
// empty cells.
func FromRow(r store.Row) *Submission {
	cells := r.Cells
	if len(cells) < NumColumns {
		padded := make([]string, NumColumns)
		copy(padded, cells)
		cells = padded
	}
	rating, _ := strconv.Atoi(cells[ColSelfRating-1])
	return &Submission{
		Position:     r.Position,
		SubmittedAt:  cells[ColTimestamp-1],
		EmployeeName: cells[ColEmployeeName-1],
		Answers: Answers{
			Challenge: cells[ColChallengeAnswer-1],
			SOP:       cells[ColSOPAnswer-1],
			Custom:    cells[ColCustomAnswer-1],
		},
		SelfRating:     rating,
		InitialAIText:  cells[ColInitialAIText-1],
		InitialAIScore: ParseScoreCell(cells[ColInitialAIScore-1]),
		ManagerReview:  cells[ColManagerReview-1],
		ManagerScore:   ParseScoreCell(cells[ColManagerScore-1]),
		FinalAIText:    cells[ColFinalAIText-1],
		FinalAIScore:   ParseScoreCell(cells[ColFinalAIScore-1]),
	}
}
