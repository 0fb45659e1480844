package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailTaken         = errors.New("the user with this email already exists in the system")
	ErrInactiveUser       = errors.New("inactive user account")
)

// ValidationError covers semantically invalid input that survived JSON
// binding (bad enum values, out-of-range lengths). Mapped to 422.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// QuotaExceededError is returned when a free-plan user hits a daily
// generation limit. Mapped to 429.
type QuotaExceededError struct {
	Resource string
	Limit    int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("Free plan limit reached: %d %s per day", e.Limit, e.Resource)
}

// GenerationError wraps failures of the external model call or of parsing
// its output. Nothing is persisted for the failed event; the caller may
// retry the same request. Mapped to 502.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("LLM generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
