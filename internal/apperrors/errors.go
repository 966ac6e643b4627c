// Package apperrors defines the structured error type shared by the domain,
// auth, and HTTP layers. Errors carry a machine-readable code and the HTTP
// status the boundary should respond with.
package apperrors

import "fmt"

// Error is the application error type with structured metadata.
type Error struct {
	Code    string // machine-readable error code
	Status  int    // HTTP status the boundary maps this error to
	Message string // human-readable message, safe to serialize
	Field   string // optional field name for validation errors
	Cause   error  // wrapped underlying error, never serialized
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an application error with a code, status, and message.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches an underlying cause to a copy of the given error. The code
// and status are preserved so errors.Is still matches the original.
func Wrap(err *Error, cause error) *Error {
	return &Error{
		Code:    err.Code,
		Status:  err.Status,
		Message: err.Message,
		Field:   err.Field,
		Cause:   cause,
	}
}

// Validation creates a field-scoped validation error.
func Validation(field, message string) *Error {
	return &Error{
		Code:    "VALIDATION_ERROR",
		Status:  400,
		Message: message,
		Field:   field,
	}
}
