package directorymock

import (
	"context"

	"assessment-backend/internal/domain/employee"
)

// Directory is a function-backed mock that satisfies employee.Directory.
type Directory struct {
	LookupFn       func(ctx context.Context, name string) (*employee.Employee, error)
	IsAuthorizedFn func(ctx context.Context, name string) bool
}

func (m *Directory) Lookup(ctx context.Context, name string) (*employee.Employee, error) {
	if m.LookupFn != nil {
		return m.LookupFn(ctx, name)
	}
	return nil, employee.ErrNotFound
}

func (m *Directory) IsAuthorized(ctx context.Context, name string) bool {
	if m.IsAuthorizedFn != nil {
		return m.IsAuthorizedFn(ctx, name)
	}
	return false
}

// Fixed returns a directory serving a static roster keyed by name.
func Fixed(list ...*employee.Employee) *Directory {
	byName := make(map[string]*employee.Employee, len(list))
	for _, e := range list {
		byName[e.Name] = e
	}
	return &Directory{
		LookupFn: func(ctx context.Context, name string) (*employee.Employee, error) {
			if e, ok := byName[name]; ok {
				return e, nil
			}
			return nil, employee.ErrNotFound
		},
		IsAuthorizedFn: func(ctx context.Context, name string) bool {
			e, ok := byName[name]
			return ok && e.CanAssess
		},
	}
}
