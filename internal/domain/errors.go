package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the precondition failures callers must be able to
// distinguish: a conflict means re-prompt for another interval, an
// authorization failure means a permissions message, not-found means the
// row is already gone.
var (
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrNotOwner        = errors.New("not the booking owner")
	ErrNotPending      = errors.New("booking is not pending")
	ErrAlreadyStarted  = errors.New("booking has already started")
	ErrBookingNotFound = errors.New("booking not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrProfileNotFound = errors.New("profile not found")
)

// ValidationError reports which create-time precondition failed before
// any I/O happened.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError anywhere in its
// chain.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
