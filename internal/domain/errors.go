package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a pipeline failure. Every error crossing the service
// boundary carries exactly one kind, which determines the HTTP status and
// whether the retry wrapper may re-attempt the operation.
type ErrorKind string

const (
	KindInvalidInput     ErrorKind = "invalid_input"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindNotFound         ErrorKind = "not_found"
	KindRateLimited      ErrorKind = "rate_limited"
	KindUnavailable      ErrorKind = "upstream_unavailable"
	KindInvalidFormat    ErrorKind = "invalid_format"
	KindGenerationFailed ErrorKind = "generation_failed"
	KindPersistence      ErrorKind = "persistence_error"
	KindInternal         ErrorKind = "internal"
)

// Error is the categorized application error. Status holds the upstream HTTP
// status when one was observed (used for retryability checks); Code is the
// machine-readable code surfaced in the response envelope.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the kind to the status returned to the caller.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindInvalidFormat:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// E builds a categorized error. The code defaults to the kind name.
func E(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Code: string(kind), Message: message}
}

// Wrap categorizes an underlying error, preserving it as the cause. If err is
// already a *Error it is returned unchanged so the original classification
// survives layered wrapping.
func Wrap(kind ErrorKind, message string, err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return &Error{Kind: kind, Code: string(kind), Message: message, Err: err}
}

// WithStatus attaches the upstream HTTP status observed for this failure.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// KindOf reports the kind of err, or KindInternal for uncategorized errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is categorized as not-found.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
