package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")

	// 401 Unauthorized
	ErrUnauthorized   = New(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	ErrInvalidSecret  = New(http.StatusUnauthorized, "INVALID_SECRET", "Invalid access secret")
	ErrSessionExpired = New(http.StatusUnauthorized, "SESSION_EXPIRED", "Session expired or unknown")

	// 404 Not Found
	ErrNotFound       = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrNoResult       = New(http.StatusNotFound, "NO_RESULT", "No reconciliation result for this session")
	ErrReportNotFound = New(http.StatusNotFound, "REPORT_NOT_FOUND", "Unknown report name")

	// 413 Payload Too Large
	ErrUploadTooLarge = New(http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", "Upload exceeds the configured size limit")

	// 422 Unprocessable Entity
	ErrUnprocessableEntity = New(http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "Request could not be processed")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// Helper functions for specific error types

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), resource)
}

// FileLoadAPIError reports a file that could not be parsed in either
// supported format.
func FileLoadAPIError(file string, err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "FILE_LOAD_FAILED",
		fmt.Sprintf("Could not read file %q as Excel or CSV", file), err.Error())
}

// MissingIdentifierAPIError reports an upload with no recognizable
// identifier column. The available columns are included so the caller can
// fix the spreadsheet.
func MissingIdentifierAPIError(file string, columns []string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "MISSING_IDENTIFIER_COLUMN",
		fmt.Sprintf("No identifier column found in %q", file),
		map[string]interface{}{"file": file, "available_columns": columns})
}

// SchemaValidationAPIError reports required canonical fields missing from
// one or both datasets. This is the expected failure mode for malformed
// uploads and is never treated as an internal error.
func SchemaValidationAPIError(missing map[string][]string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "SCHEMA_VALIDATION_FAILED",
		"Uploaded datasets are missing required columns",
		map[string]interface{}{"missing_fields": missing})
}

// DuplicateColumnAPIError reports two raw columns normalizing to the same
// canonical field.
func DuplicateColumnAPIError(file, canonical string, raw []string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "DUPLICATE_COLUMN",
		fmt.Sprintf("Multiple columns in %q map to %q", file, canonical),
		map[string]interface{}{"file": file, "canonical": canonical, "raw_columns": raw})
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}

// PanicRecovery represents panic recovery information
type PanicRecovery struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrPanic creates a panic recovery error
func ErrPanic(rec interface{}) *APIError {
	return NewWithDetails(
		http.StatusInternalServerError,
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		PanicRecovery{
			Message: fmt.Sprintf("%v", rec),
		},
	)
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(NewErrorResponse(err))
}

// NewValidationError creates a simple validation error
func NewValidationError(message string) *APIError {
	return New(http.StatusBadRequest, "VALIDATION_FAILED", message)
}

// NewInternalError creates a simple internal server error
func NewInternalError(message string) *APIError {
	return New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message)
}
