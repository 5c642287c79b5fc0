package storemock

import (
	"context"
	"errors"

	"assessment-backend/internal/domain/store"
)

// Store is a function-backed mock that satisfies store.TableStore.
// Only methods you need are included; add more as tests require.
type Store struct {
	HeaderFn      func(ctx context.Context) ([]string, error)
	ReadAllFn     func(ctx context.Context) ([]store.Row, error)
	AppendFn      func(ctx context.Context, cells []string) error
	UpdateCellFn  func(ctx context.Context, position, column int, value string) error
	UpdateCellsFn func(ctx context.Context, position int, updates map[int]string) error
}

func (m *Store) Header(ctx context.Context) ([]string, error) {
	if m.HeaderFn != nil {
		return m.HeaderFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *Store) ReadAll(ctx context.Context) ([]store.Row, error) {
	if m.ReadAllFn != nil {
		return m.ReadAllFn(ctx)
	}
	return nil, nil
}

func (m *Store) Append(ctx context.Context, cells []string) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, cells)
	}
	return nil
}

func (m *Store) UpdateCell(ctx context.Context, position, column int, value string) error {
	if m.UpdateCellFn != nil {
		return m.UpdateCellFn(ctx, position, column, value)
	}
	return nil
}

func (m *Store) UpdateCells(ctx context.Context, position int, updates map[int]string) error {
	if m.UpdateCellsFn != nil {
		return m.UpdateCellsFn(ctx, position, updates)
	}
	return nil
}

// Mem is an in-memory TableStore with the same position semantics as the real
// backends: data rows start at position 2, right after the header.
type Mem struct {
	Headers []string
	Rows    [][]string
}

func NewMem(headers []string) *Mem { return &Mem{Headers: headers} }

func (m *Mem) Header(ctx context.Context) ([]string, error) { return m.Headers, nil }

func (m *Mem) ReadAll(ctx context.Context) ([]store.Row, error) {
	out := make([]store.Row, 0, len(m.Rows))
	for i, cells := range m.Rows {
		c := make([]string, len(cells))
		copy(c, cells)
		out = append(out, store.Row{Position: i + 2, Cells: c})
	}
	return out, nil
}

func (m *Mem) Append(ctx context.Context, cells []string) error {
	c := make([]string, len(cells))
	copy(c, cells)
	m.Rows = append(m.Rows, c)
	return nil
}

func (m *Mem) UpdateCell(ctx context.Context, position, column int, value string) error {
	return m.UpdateCells(ctx, position, map[int]string{column: value})
}

func (m *Mem) UpdateCells(ctx context.Context, position int, updates map[int]string) error {
	idx := position - 2
	if idx < 0 || idx >= len(m.Rows) {
		return errors.New("position out of range")
	}
	for column, value := range updates {
		for len(m.Rows[idx]) < column {
			m.Rows[idx] = append(m.Rows[idx], "")
		}
		m.Rows[idx][column-1] = value
	}
	return nil
}
