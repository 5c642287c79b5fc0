package employee

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("employee not found")

// Directory is the read side of the roster. The roster itself is edited
// externally; within a session it is a lookup table only.
type Directory interface {
	Lookup(ctx context.Context, name string) (*Employee, error)
	IsAuthorized(ctx context.Context, name string) bool
}
