package xlsx

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"assessment-backend/internal/domain/store"
)

// Workbook is a single xlsx file holding one or more tables, each on its own
// sheet. All sheet stores of a workbook share one mutex, so individual
// operations are serialized the way a remote spreadsheet service would.
type Workbook struct {
	mu   sync.Mutex
	path string
	f    *excelize.File
}

// OpenWorkbook opens the workbook at path, creating it with the given sheets
// and header rows when it does not exist yet. Sheets missing from an existing
// file are added.
func OpenWorkbook(path string, sheets map[string][]string) (*Workbook, error) {
	var f *excelize.File
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f = excelize.NewFile()
	} else {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
	}

	for name, headers := range sheets {
		if idx, err := f.GetSheetIndex(name); err == nil && idx >= 0 {
			continue
		}
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		h := headers
		if err := f.SetSheetRow(name, "A1", &h); err != nil {
			return nil, err
		}
	}
	// Drop the default sheet excelize creates in new files, unless asked for.
	if _, wanted := sheets["Sheet1"]; !wanted && len(sheets) > 0 {
		if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
			_ = f.DeleteSheet("Sheet1")
		}
	}

	if err := f.SaveAs(path); err != nil {
		return nil, err
	}
	return &Workbook{path: path, f: f}, nil
}

func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

// Sheet returns a TableStore over one sheet of the workbook.
func (w *Workbook) Sheet(name string) *SheetStore {
	return &SheetStore{wb: w, sheet: name}
}

// save flushes in-memory state to disk. On failure the file is re-read from
// disk so unsaved cell edits do not linger in memory as phantom state.
func (w *Workbook) save() error {
	if err := w.f.Save(); err != nil {
		if reopened, rerr := excelize.OpenFile(w.path); rerr == nil {
			_ = w.f.Close()
			w.f = reopened
		}
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// SheetStore implements store.TableStore over one sheet.
type SheetStore struct {
	wb    *Workbook
	sheet string
}

var _ store.TableStore = (*SheetStore)(nil)

func (s *SheetStore) Header(ctx context.Context) ([]string, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()
	rows, err := s.wb.f.GetRows(s.sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", s.sheet)
	}
	return rows[0], nil
}

// ReadAll returns the data rows. Position is the physical sheet row
// (1-indexed, header included); it is stable because rows are only appended.
// excelize trims trailing empty cells, so rows are padded back to header
// width.
func (s *SheetStore) ReadAll(ctx context.Context) ([]store.Row, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()
	rows, err := s.wb.f.GetRows(s.sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	width := len(rows[0])
	out := make([]store.Row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if len(cells) < width {
			padded := make([]string, width)
			copy(padded, cells)
			cells = padded
		}
		out = append(out, store.Row{Position: i + 2, Cells: cells})
	}
	return out, nil
}

func (s *SheetStore) Append(ctx context.Context, cells []string) error {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()
	rows, err := s.wb.f.GetRows(s.sheet)
	if err != nil {
		return err
	}
	anchor, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}
	row := cells
	if err := s.wb.f.SetSheetRow(s.sheet, anchor, &row); err != nil {
		return err
	}
	return s.wb.save()
}

func (s *SheetStore) UpdateCell(ctx context.Context, position, column int, value string) error {
	return s.UpdateCells(ctx, position, map[int]string{column: value})
}

// UpdateCells writes all cells in memory first and saves once, so the file on
// disk moves between consistent states only.
func (s *SheetStore) UpdateCells(ctx context.Context, position int, updates map[int]string) error {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()
	if position < 2 {
		return fmt.Errorf("position %d is not a data row", position)
	}
	for column, value := range updates {
		cell, err := excelize.CoordinatesToCellName(column, position)
		if err != nil {
			return err
		}
		if err := s.wb.f.SetCellStr(s.sheet, cell, value); err != nil {
			return err
		}
	}
	return s.wb.save()
}
