package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a trip id does not exist.
var ErrNotFound = errors.New("trip not found")

// ConstraintViolation reports a write rejected by a table invariant.
type ConstraintViolation struct {
	Field   string
	Message string
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation on %s: %s", e.Field, e.Message)
}

// errDateRange is the violation for an end date before the start date.
func errDateRange(start, end string) *ConstraintViolation {
	return &ConstraintViolation{
		Field:   "date_end",
		Message: fmt.Sprintf("date_end (%s) must be on or after date_start (%s)", end, start),
	}
}
