// Package apperror defines the error taxonomy shared by the service and
// repository layers. Handlers translate these into HTTP responses.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrAlreadyLiked = errors.New("already liked")
	ErrNotLiked     = errors.New("not liked")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

type AppError struct {
	Err     error        // actual error
	Message string       // Human-readable error message
	Field   string       // Optional: field causing the error
	Fields  []FieldError // Optional: every rejected field, in input order
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// FieldErrors returns the per-field breakdown of a validation error. Errors
// built with ValidationFailed report their single field.
func (e *AppError) FieldErrors() []FieldError {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	return []FieldError{{Param: e.Field, Message: e.Message}}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundMessage is NotFound with a caller-supplied message, for lookups
// that are not keyed by an id.
func NotFoundMessage(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// InvalidFields reports several rejected fields at once. The first field's
// message doubles as the error message.
func InvalidFields(fields []FieldError) *AppError {
	e := &AppError{Err: ErrValidation, Fields: fields, Message: "validation failed"}
	if len(fields) > 0 {
		e.Message = fields[0].Message
		e.Field = fields[0].Param
	}
	return e
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// DuplicateUser is the conflict raised when registering an email that is
// already taken.
func DuplicateUser() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "User already exists",
		Field:   "email",
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func AlreadyLiked() *AppError {
	return &AppError{
		Err:     ErrAlreadyLiked,
		Message: "Post already liked",
	}
}

func NotLiked() *AppError {
	return &AppError{
		Err:     ErrNotLiked,
		Message: "Post has not yet been liked",
	}
}
