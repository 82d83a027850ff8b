// Package domain holds the error vocabulary shared by every bounded context of the service.
package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an application error independently of the transport.
type ErrorCode string

const (
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeInvalidState ErrorCode = "INVALID_STATE"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
)

// AppError is a classified error carrying an optional sentinel cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel cause to errors.Is.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(cause error, entity, id string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID '%s' not found", entity, id),
		Err:     cause,
	}
}

// NewValidationError reports malformed input.
func NewValidationError(cause error, message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Err: cause}
}

// NewConflictError reports a uniqueness or concurrency conflict.
func NewConflictError(cause error, message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Err: cause}
}

// NewInvalidStateError reports an operation the entity's current state forbids.
func NewInvalidStateError(cause error, message string) *AppError {
	return &AppError{Code: CodeInvalidState, Message: message, Err: cause}
}

// NewUnauthorizedError reports missing or wrong credentials.
func NewUnauthorizedError(cause error, message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Err: cause}
}

// NewForbiddenError reports an authenticated caller acting outside its role.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

// CodeOf returns the code of the first AppError in err's chain, or "" when there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
