package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUpstreamSend marks a failed broker delivery. The registry is unchanged.
	ErrUpstreamSend = errors.New("upstream send failed")
	// ErrInvalidInput marks a malformed request rejected before any broker or registry work.
	ErrInvalidInput = errors.New("invalid input")
)

// SendError wraps the broker failure for one produce or update.
type SendError struct {
	Topic string
	Err   error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%v: topic %s: %v", ErrUpstreamSend, e.Topic, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Is reports ErrUpstreamSend so callers can match without knowing the broker error.
func (e *SendError) Is(target error) bool {
	return target == ErrUpstreamSend
}

// ValidationError lists the request fields that failed validation.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%v: %v", ErrInvalidInput, e.Err)
	}
	return fmt.Sprintf("%v: missing or invalid fields %v", ErrInvalidInput, e.Fields)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func newValidationError(err error) *ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Err: err}
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields, Err: err}
}
