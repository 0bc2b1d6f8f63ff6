package types

import (
	"errors"
	"fmt"
)

// Storage errors. Callers match them with errors.Is; the wrapped message
// carries the path or record involved.
var (
	ErrNotFound    = errors.New("not found")
	ErrParse       = errors.New("malformed document")
	ErrValidation  = errors.New("validation failed")
	ErrLockTimeout = errors.New("lock timeout")
	ErrIO          = errors.New("i/o failure")
)

// ErrConfirmationRequired is returned by destructive commands invoked
// without an explicit confirmation.
var ErrConfirmationRequired = errors.New("confirmation required")

// CategoryInUseError rejects removing a category that dishes still
// reference. It matches ErrValidation.
type CategoryInUseError struct {
	CategoryID string
	DishCount  int
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("cannot delete category %s: it contains %d dish(es)", e.CategoryID, e.DishCount)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *CategoryInUseError) Is(target error) bool {
	return target == ErrValidation
}

func invalidStatus(s string) error {
	return fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}
