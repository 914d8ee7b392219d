// Package apperr defines the error taxonomy shared by all services.
// Every service failure carries an HTTP status code; handlers read the
// code via StatusOf and fall back to 500 for anything unclassified.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error with an associated HTTP status code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with an explicit status code.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Validation reports a missing or malformed request field (400).
func Validation(format string, args ...any) *Error {
	return &Error{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a request with no resolvable identity (401).
func Unauthorized(message string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: message}
}

// Forbidden reports a caller with the wrong role or no enrollment (403).
func Forbidden(message string) *Error {
	return &Error{Code: http.StatusForbidden, Message: message}
}

// NotFound reports a referenced entity that does not exist (404).
func NotFound(message string) *Error {
	return &Error{Code: http.StatusNotFound, Message: message}
}

// StatusOf extracts the HTTP status code from err, unwrapping as needed.
// Errors without a code map to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return http.StatusInternalServerError
}
