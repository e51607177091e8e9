package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a service failure for HTTP status mapping
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalidCredential
	KindInvalid
	KindExternalService
)

// Error is a service-level error with a classification and a
// message safe to return to clients
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given kind and client-facing message
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and client-facing message to an underlying error
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound creates a not-found error
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Conflict creates a conflict error
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// InvalidCredential creates a credential-check failure
func InvalidCredential(message string) *Error {
	return New(KindInvalidCredential, message)
}

// Invalid creates a validation error
func Invalid(message string) *Error {
	return New(KindInvalid, message)
}

// External wraps a failure from an external provider (storage, SMS, push)
func External(message string, err error) *Error {
	return Wrap(KindExternalService, message, err)
}

// Internal wraps an unanticipated failure
func Internal(err error) *Error {
	return Wrap(KindInternal, "internal server error", err)
}

// KindOf returns the classification of err, KindInternal if untyped
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ClientMessage returns the message safe to show to clients
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error to its response status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidCredential, KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
