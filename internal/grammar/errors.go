package grammar

import (
	"errors"
	"fmt"
)

// GenerationErrorCode categorizes generation failures.
type GenerationErrorCode string

const (
	// ErrCodeExhausted indicates no production satisfies the current
	// constraint, even after falling back to a literal.
	ErrCodeExhausted GenerationErrorCode = "GENERATION_EXHAUSTED"

	// ErrCodeInvalidConfig indicates a Config that cannot drive a run.
	ErrCodeInvalidConfig GenerationErrorCode = "INVALID_CONFIG"
)

// GenerationError reports a construction that could not complete. The
// partially built subtree is discarded.
type GenerationError struct {
	Code GenerationErrorCode

	// Production names the grammar node that failed, e.g. "table_ref".
	Production string

	Message string
}

func (e *GenerationError) Error() string {
	if e.Production != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Production, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func exhausted(production, format string, args ...any) *GenerationError {
	return &GenerationError{
		Code:       ErrCodeExhausted,
		Production: production,
		Message:    fmt.Sprintf(format, args...),
	}
}

func invalidConfig(format string, args ...any) *GenerationError {
	return &GenerationError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsExhausted reports whether err is a GenerationExhausted failure.
// Uses errors.As to handle wrapped errors.
func IsExhausted(err error) bool {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeExhausted
	}
	return false
}

// IsInvalidConfig reports whether err rejects a Config.
func IsInvalidConfig(err error) bool {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeInvalidConfig
	}
	return false
}
