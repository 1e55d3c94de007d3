package validation

import (
	"testing"
	"time"

	"github.com/vnykmshr/tasklane/pkg/common/errors"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		wantError bool
	}{
		{"positive value", 10, false},
		{"positive value 1", 1, false},
		{"zero value", 0, true},
		{"negative value", -1, true},
		{"large negative", -1000000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("test", "capacity", tt.value)

			if tt.wantError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.IsValidationError(err) {
					t.Errorf("expected ValidationError, got %T", err)
				}
			} else if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name      string
		value     int
		wantError bool
	}{
		{"lower bound", -20, false},
		{"upper bound", 19, false},
		{"inside", 0, false},
		{"below", -21, true},
		{"above", 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange("config", "priority", tt.value, -20, 19)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateRange(%d) error = %v, wantError %v", tt.value, err, tt.wantError)
			}
		})
	}

	err := ValidateRange("config", "priority", 42, -20, 19)
	want := "config: invalid priority=42 (out of range) - use a value between -20 and 19"
	if err == nil || err.Error() != want {
		t.Errorf("error = %v, want %q", err, want)
	}
}

func TestValidatePositiveDuration(t *testing.T) {
	if err := ValidatePositiveDuration("runner", "interval", time.Second); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := ValidatePositiveDuration("runner", "interval", 0); !errors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
	if err := ValidatePositiveDuration("runner", "interval", -time.Millisecond); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestValidateNotNil(t *testing.T) {
	if err := ValidateNotNil("runner", "job", func() {}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	err := ValidateNotNil("runner", "job", nil)
	if !errors.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got, want := err.Error(), "runner: invalid job=<nil> (cannot be nil) - provide a valid job"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidateNotEmpty(t *testing.T) {
	if err := ValidateNotEmpty("runner", "id", "tick"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := ValidateNotEmpty("runner", "id", ""); !errors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestValidateMaxLength(t *testing.T) {
	if err := ValidateMaxLength("runner", "id", "abc", 3); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := ValidateMaxLength("runner", "id", "abcd", 3); !errors.IsValidationError(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}
