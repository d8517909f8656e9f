// Package apperror carries request-facing failures and the HTTP status each maps to.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindAuth
	KindInternal
)

// General is the errors key used when a failure is not tied to one field.
const General = "general"

// Error is a failure with a per-field message map rendered as {"errors": Fields}.
type Error struct {
	Kind   Kind
	Fields map[string]interface{}
	// Status overrides the default status for Kind when non-zero.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Fields, e.Err)
	}
	return fmt.Sprintf("%v", e.Fields)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status for the error.
func (e *Error) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, field string, msg interface{}) *Error {
	return &Error{Kind: kind, Fields: map[string]interface{}{field: msg}}
}

// Validation builds a 400 from a field map.
func Validation(fields map[string]interface{}) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

func ValidationField(field string, msg interface{}) *Error {
	return newError(KindValidation, field, msg)
}

func Conflict(field string, msg interface{}) *Error {
	return newError(KindConflict, field, msg)
}

func NotFound(field string, msg interface{}) *Error {
	return newError(KindNotFound, field, msg)
}

func Auth(msg string) *Error {
	return newError(KindAuth, General, msg)
}

// Internal hides err behind a generic message; err stays reachable through Unwrap.
func Internal(err error) *Error {
	return &Error{
		Kind:   KindInternal,
		Fields: map[string]interface{}{General: "Server error"},
		Err:    err,
	}
}

// WithStatus returns a copy of e that renders with status.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

// From converts any error into an *Error, treating unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
