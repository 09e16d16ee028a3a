package service

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to test an error returned by a service.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInvalidRequest = errors.New("invalid request")
)

// Error is a client-facing failure. Message is safe to show to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the kind. Forbidden also reports as NotFound, so callers
// that only know about NotFound keep hiding resources from strangers.
func (e *Error) Unwrap() []error {
	if e.Kind == ErrForbidden {
		return []error{ErrForbidden, ErrNotFound}
	}
	return []error{e.Kind}
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func forbidden(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

func conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func invalid(format string, args ...any) error {
	return newError(ErrInvalidRequest, format, args...)
}
