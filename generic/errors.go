/*
errors.go - Centralized error types for the reconciliation engine

ERROR CATEGORIES:
  1. Row-level errors - Recovered locally: counted, logged, excluded
  2. Batch-level errors - Abort the import target: nothing is committed

USAGE:
  Callers distinguish the two with IsRowLevel:

    if generic.IsRowLevel(err) {
        result.Invalid++
    }

SEE ALSO:
  - reconcile.go: Counts row-level errors, propagates the rest
  - fields.go: Produces FieldError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidField is returned when a row field cannot be parsed into
	// its target type. Row-level: the row is counted as invalid.
	ErrInvalidField = errors.New("invalid field")

	// ErrCommitFailed is returned when staged writes could not be flushed.
	// Batch-level: the whole import target is rolled back.
	ErrCommitFailed = errors.New("commit failed")

	// ErrRowSource is returned when the row source cannot be opened or read.
	// Batch-level.
	ErrRowSource = errors.New("row source failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError describes a field that could not be parsed.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: cannot parse %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRowLevel returns true if the error only invalidates a single row.
func IsRowLevel(err error) bool {
	return errors.Is(err, ErrInvalidField)
}
