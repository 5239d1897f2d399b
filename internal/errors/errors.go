package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig  = "CONFIG"
	ErrCluster = "CLUSTER"
	ErrAudio   = "AUDIO"
	ErrMIDI    = "MIDI"
	ErrExport  = "EXPORT"

	// Core mapping/synthesis failures
	ErrUnknownMetric    = "UNKNOWN_METRIC"
	ErrInvalidFrequency = "INVALID_FREQUENCY"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrCluster code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrCluster,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewUnknownMetric reports a metric name that has no entry in the sound table.
func NewUnknownMetric(name string) *Error {
	return &Error{
		Code:       ErrUnknownMetric,
		Message:    fmt.Sprintf("Invalid metric: %s", name),
		Suggestion: "Run 'sonify-k8s notes' to list the known metrics",
	}
}

// NewInvalidFrequency reports a non-positive frequency passed to synthesis.
func NewInvalidFrequency(frequency float64) *Error {
	return &Error{
		Code:    ErrInvalidFrequency,
		Message: fmt.Sprintf("Invalid frequency: %g", frequency),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var sErr *Error
	if errors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

// Summary returns the first line of a structured error without the failure
// symbol, or err.Error() for plain errors. Used for single-line log output.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var sErr *Error
	if errors.As(err, &sErr) {
		if sErr.Cause == nil {
			return sErr.Message
		}
		// Validation wraps a cause under its own text.
		cause := Summary(sErr.Cause)
		if cause == sErr.Message {
			return sErr.Message
		}
		return sErr.Message + ": " + cause
	}
	return err.Error()
}
