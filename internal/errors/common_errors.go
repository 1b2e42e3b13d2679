package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMissingInput ErrorType = "MISSING_INPUT"
	ErrTypeSchema       ErrorType = "SCHEMA"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeStorage      ErrorType = "STORAGE"
	ErrTypeConfig       ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err wraps an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == errType
}

// Helper functions for common error types

// NewMissingInputError creates an error for an input file that does not exist
func NewMissingInputError(path string, cause error) *AppError {
	return NewAppError(ErrTypeMissingInput, fmt.Sprintf("input file %s is missing", path), cause).
		WithContext("path", path)
}

// NewSchemaError creates an error for a table whose header or cell contents
// do not match the expected schema. row is the line number in the file, 0 when
// the problem is not tied to a row.
func NewSchemaError(table string, row int, column, message string) *AppError {
	msg := fmt.Sprintf("%s: %s", table, message)
	if row > 0 {
		msg = fmt.Sprintf("%s row %d column %s: %s", table, row, column, message)
	} else if column != "" {
		msg = fmt.Sprintf("%s column %s: %s", table, column, message)
	}
	return NewAppError(ErrTypeSchema, msg, nil).
		WithContext("table", table).
		WithContext("row", row).
		WithContext("column", column)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
