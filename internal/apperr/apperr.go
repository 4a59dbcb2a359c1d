// Package apperr defines the typed domain errors surfaced over the HTTP API.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rotisserie/eris"
)

// Error is a domain failure carrying the HTTP status it maps to and an
// optional detail string safe to show to clients.
type Error struct {
	Status  int
	Message string
	Detail  string
	cause   error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// InvalidInput reports a bad request body or unparseable URL.
func InvalidInput(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// FetchFailed reports that the target site could not be retrieved. The
// upstream status or reason goes in detail. This is a client-facing 400:
// the cause is an unreachable or misconfigured target, not a server fault.
func FetchFailed(msg, detail string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, Detail: detail}
}

// AIFailure reports an empty, malformed, or unusable model response.
func AIFailure(msg string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg}
}

// NotFound reports an unknown record id.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Conflict reports a normalized-URL uniqueness violation.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

// Internal wraps an unanticipated error. The underlying detail is kept for
// server-side logging only; clients see a generic message.
func Internal(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: "Internal server error.",
		cause:   eris.Wrap(err, "internal"),
	}
}

// FromError returns err as an *Error, wrapping anything unanticipated as a
// generic 500.
func FromError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
