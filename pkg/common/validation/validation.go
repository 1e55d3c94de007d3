package validation

import (
	"fmt"
	"time"

	tlerrors "github.com/vnykmshr/tasklane/pkg/common/errors"
)

// ValidatePositive validates that an integer value is positive (> 0).
// Returns a ValidationError if the value is not positive.
func ValidatePositive(module, field string, value int) error {
	if value <= 0 {
		return tlerrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateRange validates that min <= value <= max.
func ValidateRange(module, field string, value, min, max int) error {
	if value < min || value > max {
		return tlerrors.NewValidationError(module, field, value, "out of range").
			WithHint(fmt.Sprintf("use a value between %d and %d", min, max))
	}
	return nil
}

// ValidatePositiveDuration validates that a duration is positive.
func ValidatePositiveDuration(module, field string, value time.Duration) error {
	if value <= 0 {
		return tlerrors.NewValidationError(module, field, value, "must be positive").
			WithHint("use a duration such as 1s or 500ms")
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil.
// Returns a ValidationError if the value is nil.
func ValidateNotNil(module, field string, value interface{}) error {
	if value == nil {
		return tlerrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ValidationError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return tlerrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}

// ValidateMaxLength validates that a string is at most max bytes long.
func ValidateMaxLength(module, field string, value string, max int) error {
	if len(value) > max {
		return tlerrors.NewValidationError(module, field, value, "too long").
			WithHint(fmt.Sprintf("use at most %d characters", max))
	}
	return nil
}
