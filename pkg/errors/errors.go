package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies the faults the collection engine can hit
type ErrorType string

const (
	// ErrorTypeAuth: login rejected or credentials missing. Terminal for
	// the affected tag, never retried.
	ErrorTypeAuth ErrorType = "auth"

	// ErrorTypeSession: the browsing session itself became unusable
	// (driver-level failure, teardown, timeout opening). Terminal for the
	// tag; records collected so far are kept.
	ErrorTypeSession ErrorType = "session"

	// ErrorTypeNavigation: a navigate/scroll/measure action failed but the
	// session may still be usable. Counted against the attempt bound.
	ErrorTypeNavigation ErrorType = "navigation"

	// ErrorTypeExtraction: reading page content failed this iteration.
	// Counted against the attempt bound.
	ErrorTypeExtraction ErrorType = "extraction"

	// ErrorTypeRateLimit: the platform is throttling us.
	ErrorTypeRateLimit ErrorType = "rate_limit"

	ErrorTypeUnknown ErrorType = "unknown"
)

// Error is a typed collection-engine error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap creates a typed error around an underlying cause
func Wrap(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// IsRetryable reports whether an error of this type is worth another
// attempt within the same session
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNavigation, ErrorTypeExtraction, ErrorTypeRateLimit:
		return true
	case ErrorTypeAuth, ErrorTypeSession:
		return false
	default:
		return false
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown when err is not
// a typed error
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}
