package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema     ErrorType = "SCHEMA"
	ErrTypeDataFormat ErrorType = "DATA_FORMAT"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
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

// NewSchemaError reports a required sheet or column that is missing.
// An empty column means the whole sheet is missing.
func NewSchemaError(sheet, field, column string) *AppError {
	var err *AppError
	if column == "" {
		err = NewAppError(ErrTypeSchema, fmt.Sprintf("sheet %q not found in workbook", sheet), nil)
	} else {
		err = NewAppError(ErrTypeSchema,
			fmt.Sprintf("sheet %q is missing required column %q (field %s)", sheet, column, field), nil)
		err.WithContext("field", field).WithContext("column", column)
	}
	return err.WithContext("sheet", sheet)
}

// NewDataFormatError reports a value that cannot be read as a date
func NewDataFormatError(location, value string, cause error) *AppError {
	return NewAppError(ErrTypeDataFormat,
		fmt.Sprintf("cannot parse %q as a date in %s", value, location), cause).
		WithContext("value", value)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
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

// TypeOf returns the ErrorType of the first AppError in the chain
func TypeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// IsSchemaError reports whether err is a missing sheet or column error
func IsSchemaError(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrTypeSchema
}

// IsDataFormatError reports whether err is an unparseable date error
func IsDataFormatError(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrTypeDataFormat
}

// IsNotFoundError reports whether err is a missing resource error
func IsNotFoundError(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrTypeNotFound
}

// IsStorageError reports whether err is a failure to write output
func IsStorageError(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrTypeStorage
}

// IsConfigurationError reports whether err is a configuration error
func IsConfigurationError(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrTypeConfig
}
