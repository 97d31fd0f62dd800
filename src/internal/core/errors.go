// FILE: logroute/src/internal/core/errors.go
package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation matches any ValidationError
	ErrValidation error = &ValidationError{}

	// ErrConfiguration matches any ConfigurationError
	ErrConfiguration error = &ConfigurationError{}

	// ErrSinkIO matches any SinkIOError
	ErrSinkIO error = &SinkIOError{}

	// ErrShutdownTimeout matches any ShutdownTimeoutError
	ErrShutdownTimeout error = &ShutdownTimeoutError{}
)

// ValidationError reports a message or handle that cannot be dispatched.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// ConfigurationError reports an unusable routing configuration.
type ConfigurationError struct {
	Reason string
	Err    error
}

func NewConfigurationError(reason string) error {
	return &ConfigurationError{Reason: reason}
}

// WithConfiguration wraps parent with a ConfigurationError
func WithConfiguration(parent error, reason string) error {
	return &ConfigurationError{Reason: reason, Err: parent}
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)
	return ok
}

// SinkIOError is reported through diagnostics and never returned from dispatch.
type SinkIOError struct {
	Sink string
	Op   string
	Err  error
}

// WithSinkIO wraps parent with a SinkIOError
func WithSinkIO(parent error, sink, op string) error {
	return &SinkIOError{Sink: sink, Op: op, Err: parent}
}

func (e *SinkIOError) Error() string {
	return fmt.Sprintf("sink %s: %s failed: %v", e.Sink, e.Op, e.Err)
}

func (e *SinkIOError) Unwrap() error { return e.Err }

func (e *SinkIOError) Is(target error) bool {
	_, ok := target.(*SinkIOError)
	return ok
}

// ShutdownTimeoutError reports an async drain that outlived its budget.
type ShutdownTimeoutError struct {
	Sink    string
	Timeout time.Duration
	Pending int
}

func (e *ShutdownTimeoutError) Error() string {
	return fmt.Sprintf("Max queue flush timeout (%d ms) exceeded. Approximately %d queued events will be discarded.",
		e.Timeout.Milliseconds(), e.Pending)
}

func (e *ShutdownTimeoutError) Is(target error) bool {
	_, ok := target.(*ShutdownTimeoutError)
	return ok
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
