// Package apperr is the error taxonomy shared by the workflow services and
// the HTTP layer.
package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Code is a machine-readable error class.
type Code string

const (
	CodeValidation       Code = "VALIDATION"
	CodeConflict         Code = "CONFLICT"
	CodeInvalidState     Code = "INVALID_STATE"
	CodeNotFound         Code = "NOT_FOUND"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
)

// HTTPStatus maps a code to the status the API answers with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeConflict, CodeInvalidState:
		return fiber.StatusConflict
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeStoreUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Error carries a code, a message safe to show to clients and an optional
// cause kept for logs.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Class sentinels, usable with errors.Is.
var (
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrConflict         = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInvalidState     = &Error{Code: CodeInvalidState, Message: "invalid state"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrStoreUnavailable = &Error{Code: CodeStoreUnavailable, Message: "store unavailable"}
)

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Validation(message string) *Error   { return New(CodeValidation, message) }
func NotFound(message string) *Error     { return New(CodeNotFound, message) }
func InvalidState(message string) *Error { return New(CodeInvalidState, message) }

// Store wraps a persistence failure. Errors that already carry a code pass
// through untouched so a rollback keeps the original classification.
func Store(op string, cause error) error {
	if cause == nil {
		return nil
	}
	var ae *Error
	if errors.As(cause, &ae) {
		return cause
	}
	return Wrap(CodeStoreUnavailable, op, cause)
}

// CodeOf returns the code of the first *Error in the chain, or "" when the
// error is not classified.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Meta returns metadata of the first *Error in the chain.
func Meta(err error) map[string]string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Metadata
	}
	return nil
}
