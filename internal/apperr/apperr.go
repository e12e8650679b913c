// Package apperr defines the domain error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in the response envelope.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
)

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error is a domain error with the HTTP status it maps to.
type Error struct {
	Status  int
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches a cause to the error and returns it.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func newError(status int, code, format string, args ...any) *Error {
	return &Error{Status: status, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input (422).
func Validation(fields []FieldError, format string, args ...any) *Error {
	e := newError(http.StatusUnprocessableEntity, CodeBadRequest, format, args...)
	e.Fields = fields
	return e
}

// Unprocessable reports a well-formed request that conflicts with current state (422).
func Unprocessable(format string, args ...any) *Error {
	return newError(http.StatusUnprocessableEntity, CodeBadRequest, format, args...)
}

// Conflict reports a uniqueness violation (409).
func Conflict(format string, args ...any) *Error {
	return newError(http.StatusConflict, CodeBadRequest, format, args...)
}

// NotFound reports that a referenced entity is absent (404).
func NotFound(format string, args ...any) *Error {
	return newError(http.StatusNotFound, CodeBadRequest, format, args...)
}

// InvalidState reports an operation that would break an invariant (400).
func InvalidState(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeBadRequest, format, args...)
}

// BadRequest reports a request that cannot be processed as sent (400).
func BadRequest(format string, args ...any) *Error {
	return newError(http.StatusBadRequest, CodeBadRequest, format, args...)
}

// Unauthorized reports missing or invalid credentials (401).
func Unauthorized(format string, args ...any) *Error {
	return newError(http.StatusUnauthorized, CodeUnauthorized, format, args...)
}

// Forbidden reports an authenticated caller without the required privilege (403).
func Forbidden(format string, args ...any) *Error {
	return newError(http.StatusForbidden, CodeForbidden, format, args...)
}

// Gone reports an expired single-use token (410).
func Gone(format string, args ...any) *Error {
	return newError(http.StatusGone, CodeTokenExpired, format, args...)
}

// TooManyRequests reports a throttled caller (429).
func TooManyRequests(format string, args ...any) *Error {
	return newError(http.StatusTooManyRequests, CodeTooManyRequests, format, args...)
}

// Internal reports an unexpected failure (500). It carries no code.
func Internal(format string, args ...any) *Error {
	return newError(http.StatusInternalServerError, "", format, args...)
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, or 500 when it is not a domain error.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
