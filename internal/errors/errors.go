package errors

import (
	"errors"
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

// Error codes returned to API clients
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeMissingFile        = "MISSING_FILE"
	CodeInvalidWorkbook    = "INVALID_WORKBOOK"
	CodeSchema             = "SCHEMA_ERROR"
	CodeDataFormat         = "DATA_FORMAT_ERROR"
	CodeConfiguration      = "CONFIGURATION_ERROR"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeExportFailed       = "EXPORT_FAILED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrMissingFile    = New(http.StatusBadRequest, CodeMissingFile, "A spreadsheet file is required")

	// 404 Not Found
	ErrNotFound = New(http.StatusNotFound, CodeNotFound, "Resource not found")

	// 413 Payload Too Large
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Uploaded file exceeds the maximum allowed size")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, CodeInternal, "Internal server error")

	// 503 Service Unavailable
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidation, "Request validation failed", []ValidationError{{
		Field:   field,
		Message: message,
	}})
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidation, "Request validation failed", errs)
}

// ExportError creates an error for a report that could not be serialized
func ExportError(format string, err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodeExportFailed,
		fmt.Sprintf("Failed to export report as %s", format), err.Error())
}

// FromCalculation maps a failure raised while loading or computing over an
// uploaded workbook onto a 400 response. Every such failure is the client's
// input, so nothing here becomes a 5xx.
func FromCalculation(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	code := CodeInvalidWorkbook
	if t, ok := TypeOf(err); ok {
		switch t {
		case ErrTypeSchema:
			code = CodeSchema
		case ErrTypeDataFormat:
			code = CodeDataFormat
		case ErrTypeConfig:
			code = CodeConfiguration
		case ErrTypeValidation:
			code = CodeValidation
		}
	}
	return New(http.StatusBadRequest, code, err.Error())
}
