package model

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error is a client-facing failure: Kind classifies it, Message is safe
// to return to the caller as is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validationf reports a missing or malformed field.
func Validationf(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

// Unauthorizedf reports missing or invalid credentials.
func Unauthorizedf(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args...)
}

// Forbiddenf reports a role or ownership mismatch.
func Forbiddenf(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

// NotFoundf reports an absent task or user.
func NotFoundf(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

// Conflictf reports a uniqueness violation.
func Conflictf(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}
