package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds         = errors.New("coordinate out of bounds")
	ErrInvalidTransition   = errors.New("invalid seat status transition")
	ErrInvariantViolation  = errors.New("seat invariant violation")
	ErrMapNotFound         = errors.New("seat map not found")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrSeatUnavailable     = errors.New("seat unavailable")
	ErrSeatAlreadyAssigned = errors.New("seat already assigned")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrMoveFailed          = errors.New("move failed")
	ErrGuideNotFound       = errors.New("guide not found")
	ErrGuideBusy           = errors.New("guide seat update already in progress")
	ErrInvalidInput        = errors.New("invalid input")
)

// MoveFailedError is returned when the source seat was freed but the destination
// could not be claimed. Freed holds the passenger data so the caller can re-place it.
type MoveFailedError struct {
	Freed SeatAssignment
	Err   error
}

func (e *MoveFailedError) Error() string {
	return fmt.Sprintf("move failed: passenger %q freed from seat %s: %v", e.Freed.PassengerName, e.Freed.SeatID, e.Err)
}

func (e *MoveFailedError) Unwrap() []error {
	return []error{ErrMoveFailed, e.Err}
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvariantViolation}, args...)...)
}
