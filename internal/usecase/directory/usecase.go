package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"assessment-backend/internal/domain/employee"
	"assessment-backend/internal/domain/store"
)

// Canonical field keys after header normalization.
const (
	fieldName           = "name"
	fieldStartDate      = "start_date"
	fieldTitle          = "title"
	fieldTenure         = "tenure"
	fieldGrade          = "grade"
	fieldCanAssess      = "can_assess"
	fieldIsAdmin        = "is_admin"
	fieldCustomQuestion = "custom_question"
)

// headerAliases maps accepted roster column names (Chinese sheet headers and
// English snake_case) to canonical fields.
var headerAliases = map[string]string{
	"姓名": fieldName, "name": fieldName,
	"到職日": fieldStartDate, "start_date": fieldStartDate,
	"職稱": fieldTitle, "title": fieldTitle,
	"年資": fieldTenure, "tenure": fieldTenure,
	"職等": fieldGrade, "grade": fieldGrade,
	"可考核": fieldCanAssess, "can_assess": fieldCanAssess,
	"管理員": fieldIsAdmin, "is_admin": fieldIsAdmin,
	"自訂問題": fieldCustomQuestion, "custom_question": fieldCustomQuestion,
}

// Usecase loads the employee roster into an in-memory mapping keyed by name.
// The snapshot is re-read after ttl expires; roster edits happen externally
// and there is no point hitting the store on every lookup.
type Usecase struct {
	roster store.TableStore
	ttl    time.Duration

	mu       sync.Mutex
	byName   map[string]*employee.Employee
	loadedAt time.Time
}

var _ employee.Directory = (*Usecase)(nil)

func NewUsecase(roster store.TableStore, ttl time.Duration) *Usecase {
	return &Usecase{roster: roster, ttl: ttl}
}

// Load forces a fresh roster read, replacing any cached snapshot.
func (u *Usecase) Load(ctx context.Context) error {
	header, err := u.roster.Header(ctx)
	if err != nil {
		return fmt.Errorf("read roster header: %w", err)
	}
	fields := make(map[int]string, len(header))
	for i, h := range header {
		if f, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			fields[i] = f
		}
	}
	if _, ok := indexOf(fields, fieldName); !ok {
		return fmt.Errorf("roster has no name column (header: %v)", header)
	}

	rows, err := u.roster.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}

	byName := make(map[string]*employee.Employee, len(rows))
	for _, row := range rows {
		e := fromRow(row.Cells, fields)
		if e.Name == "" {
			continue
		}
		byName[e.Name] = e
	}

	u.mu.Lock()
	u.byName = byName
	u.loadedAt = time.Now()
	u.mu.Unlock()
	return nil
}

func indexOf(fields map[int]string, want string) (int, bool) {
	for i, f := range fields {
		if f == want {
			return i, true
		}
	}
	return 0, false
}

// fromRow builds an employee with fail-closed defaults: authorization flags
// default to false, tenure and grade to the undetermined sentinel.
func fromRow(cells []string, fields map[int]string) *employee.Employee {
	e := &employee.Employee{
		Tenure: employee.Undetermined,
		Grade:  employee.Undetermined,
	}
	for i, field := range fields {
		if i >= len(cells) {
			continue
		}
		v := strings.TrimSpace(cells[i])
		if v == "" {
			continue
		}
		switch field {
		case fieldName:
			e.Name = v
		case fieldStartDate:
			e.StartDate = v
		case fieldTitle:
			e.Title = v
		case fieldTenure:
			e.Tenure = v
		case fieldGrade:
			e.Grade = v
		case fieldCanAssess:
			e.CanAssess = parseFlag(v)
		case fieldIsAdmin:
			e.IsAdmin = parseFlag(v)
		case fieldCustomQuestion:
			e.CustomQuestion = v
		}
	}
	return e
}

// parseFlag reads the textual TRUE/FALSE convention of the roster sheet,
// case-insensitively. Anything else is false.
func parseFlag(v string) bool {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "TRUE", "Y", "YES", "是":
		return true
	}
	return false
}

func (u *Usecase) snapshot(ctx context.Context) (map[string]*employee.Employee, error) {
	u.mu.Lock()
	fresh := u.byName != nil && time.Since(u.loadedAt) < u.ttl
	byName := u.byName
	u.mu.Unlock()
	if fresh {
		return byName, nil
	}
	if err := u.Load(ctx); err != nil {
		return nil, err
	}
	u.mu.Lock()
	byName = u.byName
	u.mu.Unlock()
	return byName, nil
}

func (u *Usecase) Lookup(ctx context.Context, name string) (*employee.Employee, error) {
	byName, err := u.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := byName[strings.TrimSpace(name)]
	if !ok {
		return nil, employee.ErrNotFound
	}
	return e, nil
}

// IsAuthorized fails closed: unknown employees and roster read failures both
// report false.
func (u *Usecase) IsAuthorized(ctx context.Context, name string) bool {
	e, err := u.Lookup(ctx, name)
	if err != nil {
		return false
	}
	return e.CanAssess
}
