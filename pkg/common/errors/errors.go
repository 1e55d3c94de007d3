package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the tasklane library

var (
	// ErrClosed indicates that an operation was attempted on a stopped resource
	ErrClosed = errors.New("resource is closed")

	// ErrAlreadyRunning indicates that a component was started twice
	ErrAlreadyRunning = errors.New("already running")

	// ErrDuplicateID indicates that a job identifier is already registered
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvariant is wrapped by every InvariantError
	ErrInvariant = errors.New("invariant violated")
)

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

// NewValidationError creates a ValidationError without a hint.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a remediation hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap returns ErrInvalidConfiguration so callers can match with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// InvariantError reports a broken internal invariant of the work queue or
// scheduler. These are programmer errors: they are raised with panic, never
// returned, because the queue cannot be trusted after one occurs.
type InvariantError struct {
	Op     string
	Detail string
}

// Invariant formats an InvariantError for op.
func Invariant(op, format string, args ...interface{}) *InvariantError {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrInvariant.Error(), e.Detail)
}

// Unwrap returns ErrInvariant.
func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsInvariantError reports whether err is or wraps an InvariantError.
func IsInvariantError(err error) bool {
	var ierr *InvariantError
	return errors.As(err, &ierr)
}
