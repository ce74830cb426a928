package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across repositories and services.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means an optimistic-concurrency write found a version
	// other than the one it read. Callers should refetch and retry; the
	// core never retries on its own.
	ErrConflict = errors.New("record changed since read")
)

// ValidationError means the input is malformed and the caller is at
// fault. Its message is safe to surface verbatim to the operator UI.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError means the requested status is not reachable
// from the current status. Both states are kept for operator clarity.
type InvalidTransitionError struct {
	From IncidentStatus
	To   IncidentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}

// InvalidStateError means the operation is not valid in the entity's
// current state.
type InvalidStateError struct {
	Current   string
	Requested string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Requested, e.Current)
}
