package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnNotFound matches every *ColumnNotFoundError via errors.Is.
	ErrColumnNotFound = errors.New("column not found")
	// ErrEmptyFilter is returned when a count has nothing to count or a
	// dimension lists no values.
	ErrEmptyFilter = errors.New("empty filter")
	// ErrInvalidRangeMethod is returned for range methods other than midpoint, min or max.
	ErrInvalidRangeMethod = errors.New("invalid range method")
	// ErrDuplicateLabel is returned when two filter combinations render to the
	// same column label.
	ErrDuplicateLabel = errors.New("duplicate count label")
)

// ColumnNotFoundError reports a column referenced by a call but absent from the table.
type ColumnNotFoundError struct {
	Column string
	Role   string // target | group | filter | value | derive
}

func (e *ColumnNotFoundError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("column %q not found", e.Column)
	}
	return fmt.Sprintf("%s column %q not found", e.Role, e.Column)
}

func (e *ColumnNotFoundError) Is(target error) bool { return target == ErrColumnNotFound }
