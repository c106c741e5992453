package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrPremiumRequired     = errors.New("premium plan required")
	ErrMonthlyLimitReached = errors.New("monthly transaction limit reached")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrAlreadyPremium      = errors.New("already on the premium plan")
	ErrBillingUnavailable  = errors.New("billing not configured")
)

// ValidationError reports a malformed field of a client payload.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UpstreamError wraps a failure of an external collaborator (report
// generation, billing).
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
