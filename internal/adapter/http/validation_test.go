package http

import (
	"errors"
	"testing"
)

func TestTimestampCellValidation(t *testing.T) {
	type P struct {
		SubmittedAt string `validate:"tscell"`
	}
	cv := NewValidator()

	if err := cv.Validate(P{SubmittedAt: "2026-01-15 09:30:00"}); err != nil {
		t.Fatalf("expected valid timestamp cell, got err: %v", err)
	}

	for _, s := range []string{
		"",                     // empty
		"2026-01-15",           // date only
		"2026-01-15T09:30:00Z", // RFC3339, not the cell layout
		"15/01/2026 09:30",     // wrong order
		"not a timestamp",
	} {
		err := cv.Validate(P{SubmittedAt: s})
		if err == nil {
			t.Fatalf("expected error for %q", s)
		}
		fe := ToFieldErrors(err)
		if !containsFieldMsg(fe, "SubmittedAt", "must be a timestamp like") {
			t.Fatalf("expected tscell message for %q, got: %+v", s, fe)
		}
	}
}

func TestRequiredAndBoundsMapping(t *testing.T) {
	type P struct {
		Name   string `validate:"required"`
		Rating int    `validate:"min=1,max=10"`
		Score  int    `validate:"min=0,max=100"`
	}
	cv := NewValidator()

	err := cv.Validate(P{
		Name:   "",  // required
		Rating: 0,   // min=1
		Score:  101, // max=100
	})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	fe := ToFieldErrors(err)

	if !containsFieldMsg(fe, "Name", "is required") {
		t.Fatalf("missing 'is required' for Name: %+v", fe)
	}
	if !containsFieldMsg(fe, "Rating", "at least 1") {
		t.Fatalf("missing min message for Rating: %+v", fe)
	}
	if !containsFieldMsg(fe, "Score", "at most 100") {
		t.Fatalf("missing max message for Score: %+v", fe)
	}
}

func TestToFieldErrors_NonValidation(t *testing.T) {
	err := errors.New("boom")
	fe := ToFieldErrors(err)
	if len(fe) != 1 {
		t.Fatalf("expected 1 field error, got %d", len(fe))
	}
	if fe[0].Field != "_" || fe[0].Message != "boom" {
		t.Fatalf("unexpected mapping: %+v", fe[0])
	}
}
