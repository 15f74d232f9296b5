// Package apperrors defines the application error taxonomy shared by the
// migration engine and the store layer.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an application error.
type ErrorType string

const (
	// ErrorTypeScopeResolution means the target station or its first-play
	// identity could not be found or decoded. Fatal before any writes.
	ErrorTypeScopeResolution ErrorType = "SCOPE_RESOLUTION"

	// ErrorTypeConcurrencyConflict means a conditional write observed an
	// updated_ts that no longer matches the stored value.
	ErrorTypeConcurrencyConflict ErrorType = "CONCURRENCY_CONFLICT"

	// ErrorTypeSafetyLimit means the partition walk hit its iteration
	// ceiling before reaching the computed lower bound.
	ErrorTypeSafetyLimit ErrorType = "SAFETY_LIMIT"

	// ErrorTypeStoreUnavailable is a transport-level item store failure.
	ErrorTypeStoreUnavailable ErrorType = "STORE_UNAVAILABLE"

	// ErrorTypeNotFound means a requested item does not exist.
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation means input data violated an invariant.
	ErrorTypeValidation ErrorType = "VALIDATION"
)

// AppError is a typed application error.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewScopeResolutionError creates a scope resolution error.
func NewScopeResolutionError(message string) *AppError {
	return &AppError{Type: ErrorTypeScopeResolution, Message: message}
}

// NewConcurrencyConflictError creates a concurrency conflict error.
func NewConcurrencyConflictError(message string) *AppError {
	return &AppError{Type: ErrorTypeConcurrencyConflict, Message: message}
}

// NewSafetyLimitError creates a safety limit error.
func NewSafetyLimitError(message string) *AppError {
	return &AppError{Type: ErrorTypeSafetyLimit, Message: message}
}

// NewStoreUnavailableError creates a store unavailable error.
func NewStoreUnavailableError(message string) *AppError {
	return &AppError{Type: ErrorTypeStoreUnavailable, Message: message}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(resource string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: resource + " not found"}
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsConcurrencyConflict reports whether err is a concurrency conflict.
func IsConcurrencyConflict(err error) bool {
	return IsType(err, ErrorTypeConcurrencyConflict)
}

// IsNotFound reports whether err is a not found error.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}
