package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeFileLoad   ErrorType = "FILE_LOAD"
	ErrTypeSchema     ErrorType = "SCHEMA"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeExport     ErrorType = "EXPORT"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError represents an application-specific error. The service layer
// wraps loader and pipeline failures in an AppError so the transport layer
// can map the taxonomy onto HTTP problems while errors.As still reaches the
// underlying typed error.
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

// Helper functions for common error types

// NewFileLoadError creates an error for a file unreadable in both formats
func NewFileLoadError(message string, cause error) *AppError {
	return NewAppError(ErrTypeFileLoad, message, cause)
}

// NewSchemaError creates a dataset-schema error
func NewSchemaError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSchema, message, cause)
}

// NewExportError creates an export-related error
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
