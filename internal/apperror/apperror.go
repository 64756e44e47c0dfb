// Package apperror defines the application's error taxonomy.
//
// Services return these; the HTTP layer maps them to status codes with
// errors.Is/errors.As. Two rules shape the taxonomy:
//
//   - ErrNotFound covers both "does not exist" and "exists but belongs to
//     someone else" — callers must not be able to distinguish them, or a
//     non-owner could probe for record existence.
//   - ErrSelfAction is separate from ErrForbidden: an admin targeting
//     their own account for deactivate/delete is a bad request, not a
//     missing capability.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrSelfAction   = errors.New("self action forbidden")
)

// AppError carries a sentinel plus a human-readable message, and for
// validation errors an optional field→message map.
type AppError struct {
	Err     error
	Message string
	Fields  map[string]string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing (or not-owned) resource.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports a single invalid field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Fields:  map[string]string{field: message},
	}
}

// ValidationFields reports several invalid fields at once.
func ValidationFields(fields map[string]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// Conflict reports a uniqueness violation, e.g. a duplicate email.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Forbidden reports an authenticated caller lacking the required capability.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// SelfAction reports an admin targeting their own account for a lifecycle
// action that must not be self-applied.
func SelfAction(action string) *AppError {
	return &AppError{
		Err:     ErrSelfAction,
		Message: fmt.Sprintf("you cannot %s your own account", action),
	}
}
