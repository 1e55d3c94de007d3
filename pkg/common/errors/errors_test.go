package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCommonErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrClosed", ErrClosed, "resource is closed"},
		{"ErrAlreadyRunning", ErrAlreadyRunning, "already running"},
		{"ErrDuplicateID", ErrDuplicateID, "duplicate id"},
		{"ErrInvalidConfiguration", ErrInvalidConfiguration, "invalid configuration"},
		{"ErrInvariant", ErrInvariant, "invariant violated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "without hint",
			err: &ValidationError{
				Module: "scheduler",
				Field:  "capacity",
				Value:  -1,
				Reason: "must be positive",
			},
			want: "scheduler: invalid capacity=-1 (must be positive)",
		},
		{
			name: "with hint",
			err: &ValidationError{
				Module: "runner",
				Field:  "interval",
				Value:  0,
				Reason: "must be positive",
				Hint:   "use a value greater than 0",
			},
			want: "runner: invalid interval=0 (must be positive) - use a value greater than 0",
		},
		{
			name: "string value",
			err: &ValidationError{
				Module: "runner",
				Field:  "cron",
				Value:  "",
				Reason: "cannot be empty",
			},
			want: "runner: invalid cron= (cannot be empty)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	verr := NewValidationError("test", "field", 0, "test")

	if verr.Unwrap() != ErrInvalidConfiguration {
		t.Errorf("Unwrap() = %v, want ErrInvalidConfiguration", verr.Unwrap())
	}
	if !errors.Is(verr, ErrInvalidConfiguration) {
		t.Error("ValidationError should wrap ErrInvalidConfiguration")
	}
}

func TestValidationError_WithHint(t *testing.T) {
	err := NewValidationError("test", "field", 0, "invalid").
		WithHint("try using a positive value")

	if err.Hint != "try using a positive value" {
		t.Errorf("Hint = %q, want %q", err.Hint, "try using a positive value")
	}

	// Should return same instance for chaining
	if result := err.WithHint("new hint"); result != err {
		t.Error("WithHint should return the same instance")
	}
}

func TestInvariantError(t *testing.T) {
	err := Invariant("workqueue.DequeueAndInvoke", "queue is empty (len=%d)", 0)

	want := "workqueue.DequeueAndInvoke: invariant violated: queue is empty (len=0)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvariant) {
		t.Error("InvariantError should wrap ErrInvariant")
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation error", NewValidationError("test", "field", 0, "test"), true},
		{"wrapped validation error", fmt.Errorf("load: %w", NewValidationError("test", "field", 0, "test")), true},
		{"invariant error", Invariant("op", "broken"), false},
		{"standard error", errors.New("test"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.want {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsInvariantError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invariant error", Invariant("op", "broken"), true},
		{"wrapped invariant error", fmt.Errorf("drive: %w", Invariant("op", "broken")), true},
		{"validation error", NewValidationError("test", "field", 0, "test"), false},
		{"closed error", ErrClosed, false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInvariantError(tt.err); got != tt.want {
				t.Errorf("IsInvariantError() = %v, want %v", got, tt.want)
			}
		})
	}
}
