// Package apperr defines the typed errors returned by the campaign engine and
// its collaborators. Each error carries a Kind that callers switch on; the
// HTTP layer maps kinds to status codes with HTTPStatus.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for callers and transports.
type Kind string

const (
	KindNotFound              Kind = "NOT_FOUND"
	KindForbidden             Kind = "FORBIDDEN"
	KindInvalidState          Kind = "INVALID_STATE"
	KindPrecondition          Kind = "PRECONDITION"
	KindConflict              Kind = "CONFLICT"
	KindAlreadyAccepted       Kind = "ALREADY_ACCEPTED"
	KindNotAcceptingResponses Kind = "NOT_ACCEPTING_RESPONSES"

	// Transport-level kinds. The engine never returns these.
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindInvalidInput Kind = "INVALID_INPUT"
	KindRateLimited  Kind = "RATE_LIMITED"
)

// Error is the typed error value.
type Error struct {
	Kind     Kind
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind, so errors.Is(err, apperr.New(k, "")) works.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithMetadata creates an error carrying structured context (ids, field names).
func WithMetadata(kind Kind, message string, metadata map[string]string) *Error {
	return &Error{Kind: kind, Message: message, Metadata: metadata}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Convenience constructors.

func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func InvalidState(message string) *Error { return New(KindInvalidState, message) }
func Precondition(message string) *Error { return New(KindPrecondition, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func InvalidInput(message string) *Error { return New(KindInvalidInput, message) }

// KindOf returns the Kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err's chain contains an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to its HTTP status code. Unknown kinds map to 500.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidState, KindConflict, KindAlreadyAccepted, KindNotAcceptingResponses:
		return http.StatusConflict
	case KindPrecondition:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
