// Package apperr defines the error taxonomy shared by services, middleware and handlers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindExpired      Kind = "expired"
	KindExternal     Kind = "external_service_failure"
	KindInternal     Kind = "internal"
)

// Error carries a taxonomy kind, a stable machine code and a human message.
// Two errors match under errors.Is when kind and code are equal.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// HTTPStatus returns the explicit status or the default for the kind.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return StatusFor(e.Kind)
}

// WithStatus returns a copy that answers with the given HTTP status.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause. The result still matches the sentinel it was built from.
func Wrap(base *Error, err error) *Error {
	cp := *base
	cp.Err = err
	return &cp
}

func Validation(code, message string) *Error { return New(KindValidation, code, message) }
func NotFound(code, message string) *Error   { return New(KindNotFound, code, message) }
func Forbidden(code, message string) *Error  { return New(KindForbidden, code, message) }
func Conflict(code, message string) *Error   { return New(KindConflict, code, message) }
func Expired(code, message string) *Error    { return New(KindExpired, code, message) }

func Unauthorized(code, message string) *Error {
	return New(KindUnauthorized, code, message)
}

func External(code, message string, err error) *Error {
	return &Error{Kind: KindExternal, Code: code, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: "internal", Message: message, Err: err}
}

// From extracts an *Error from err, converting unknown errors to KindInternal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal server error", err)
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

func StatusFor(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExpired:
		return http.StatusGone
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
