package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"assessment-backend/internal/domain/store"
)

const maxColumns = 12

// cellRow mirrors a spreadsheet row in a relational table: a store-assigned
// position (the primary key) plus positional text cells. Keeping the cells
// positional preserves the append/update-cell semantics of the workbook
// backend, so both backends are interchangeable behind store.TableStore.
type cellRow struct {
	ID  uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	C1  string `gorm:"column:c1;type:text"`
	C2  string `gorm:"column:c2;type:text"`
	C3  string `gorm:"column:c3;type:text"`
	C4  string `gorm:"column:c4;type:text"`
	C5  string `gorm:"column:c5;type:text"`
	C6  string `gorm:"column:c6;type:text"`
	C7  string `gorm:"column:c7;type:text"`
	C8  string `gorm:"column:c8;type:text"`
	C9  string `gorm:"column:c9;type:text"`
	C10 string `gorm:"column:c10;type:text"`
	C11 string `gorm:"column:c11;type:text"`
	C12 string `gorm:"column:c12;type:text"`
}

func (r *cellRow) refs() []*string {
	return []*string{&r.C1, &r.C2, &r.C3, &r.C4, &r.C5, &r.C6, &r.C7, &r.C8, &r.C9, &r.C10, &r.C11, &r.C12}
}

func (r *cellRow) cells(n int) []string {
	refs := r.refs()
	out := make([]string, n)
	for i := 0; i < n && i < maxColumns; i++ {
		out[i] = *refs[i]
	}
	return out
}

func fromCells(cells []string) cellRow {
	var r cellRow
	refs := r.refs()
	for i, c := range cells {
		if i >= maxColumns {
			break
		}
		*refs[i] = c
	}
	return r
}

// Store implements store.TableStore over one relational table. The header is
// fixed at construction; the schema of the external table is owned here, not
// by callers.
type Store struct {
	db     *gorm.DB
	table  string
	header []string
}

var _ store.TableStore = (*Store)(nil)

func New(db *gorm.DB, table string, header []string) (*Store, error) {
	if len(header) == 0 || len(header) > maxColumns {
		return nil, fmt.Errorf("table %q: header must have 1..%d columns", table, maxColumns)
	}
	if err := db.Table(table).AutoMigrate(&cellRow{}); err != nil {
		return nil, err
	}
	return &Store{db: db, table: table, header: header}, nil
}

func (s *Store) Header(ctx context.Context) ([]string, error) {
	out := make([]string, len(s.header))
	copy(out, s.header)
	return out, nil
}

func (s *Store) ReadAll(ctx context.Context) ([]store.Row, error) {
	var rows []cellRow
	if err := s.db.WithContext(ctx).Table(s.table).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]store.Row, 0, len(rows))
	for i := range rows {
		out = append(out, store.Row{Position: int(rows[i].ID), Cells: rows[i].cells(len(s.header))})
	}
	return out, nil
}

func (s *Store) Append(ctx context.Context, cells []string) error {
	r := fromCells(cells)
	return s.db.WithContext(ctx).Table(s.table).Create(&r).Error
}

func (s *Store) UpdateCell(ctx context.Context, position, column int, value string) error {
	return s.UpdateCells(ctx, position, map[int]string{column: value})
}

// UpdateCells issues one UPDATE statement covering every cell, so the row is
// never visible with only part of the updates applied.
func (s *Store) UpdateCells(ctx context.Context, position int, updates map[int]string) error {
	cols := make(map[string]any, len(updates))
	for column, value := range updates {
		if column < 1 || column > maxColumns {
			return fmt.Errorf("table %q: column %d out of range", s.table, column)
		}
		cols[fmt.Sprintf("c%d", column)] = value
	}
	res := s.db.WithContext(ctx).Table(s.table).Where("id = ?", position).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
