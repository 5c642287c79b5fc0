package store

import "context"

// Row is one data row of a table together with its store-assigned position.
// Positions are stable for the lifetime of a row: the store only ever appends,
// so a position handed out by ReadAll stays valid for later cell updates.
type Row struct {
	Position int
	Cells    []string
}

// TableStore is the boundary to the external tabular store. Implementations
// serialize individual operations but give no cross-call transaction; callers
// that read, decide and then write accept the race window documented on the
// lifecycle usecase.
type TableStore interface {
	// Header returns the column names of the table (the header row).
	Header(ctx context.Context) ([]string, error)

	// ReadAll returns every data row in append order, headers excluded.
	ReadAll(ctx context.Context) ([]Row, error)

	// Append adds a new row after the last one.
	Append(ctx context.Context, cells []string) error

	// UpdateCell overwrites a single cell. Column is 1-indexed.
	UpdateCell(ctx context.Context, position, column int, value string) error

	// UpdateCells applies several cell updates to one row as a single store
	// write, so a reader never observes some but not all of them.
	UpdateCells(ctx context.Context, position int, updates map[int]string) error
}
