// Package errors provides the structured error type shared by the page
// store, the config loader and the HTTP server.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError is a structured error type with context.
type AppError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	PageID      string
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.PageID != "" {
		parts = append(parts, "page:"+e.PageID)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPage attaches the page the error relates to.
func (e *AppError) WithPage(pageID string) *AppError {
	e.PageID = pageID

	return e
}

// WithFile attaches a file path.
func (e *AppError) WithFile(path string) *AppError {
	e.FilePath = path

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *AppError {
	return &AppError{
		Type:        ErrorTypeNotFound,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewRenderError creates a render error.
func NewRenderError(code, message string, cause error) *AppError {
	return &AppError{
		Type:        ErrorTypeRender,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *AppError {
	return &AppError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *AppError {
	return &AppError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *AppError {
	return &AppError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Recoverable
	}

	return false
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Type == ErrorTypeNotFound
	}

	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Type == ErrorTypeValidation
	}

	return false
}

// HTTPStatus maps an error to the status code the server answers with.
func HTTPStatus(err error) int {
	switch GetErrorType(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes.
const (
	ErrCodePageNotFound     = "ERR_PAGE_NOT_FOUND"
	ErrCodeInvalidPage      = "ERR_INVALID_PAGE"
	ErrCodeInvalidPath      = "ERR_INVALID_PATH"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeRenderFailed     = "ERR_RENDER_FAILED"
	ErrCodeStoreFailed      = "ERR_STORE_FAILED"
	ErrCodeExportFailed     = "ERR_EXPORT_FAILED"
	ErrCodeInternalError    = "ERR_INTERNAL"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)

// FieldValidationError describes one invalid field.
type FieldValidationError struct {
	FieldName    string
	FieldValue   interface{}
	ErrorMessage string
}

// Error implements the error interface.
func (fve *FieldValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", fve.FieldName, fve.ErrorMessage)
}

// ValidationErrorCollection represents a collection of validation errors.
type ValidationErrorCollection struct {
	Errors []*FieldValidationError
}

// Error implements the error interface.
func (vec *ValidationErrorCollection) Error() string {
	if len(vec.Errors) == 0 {
		return "no validation errors"
	}
	if len(vec.Errors) == 1 {
		return vec.Errors[0].Error()
	}

	return fmt.Sprintf("validation failed with %d errors", len(vec.Errors))
}

// AddField adds a field validation error to the collection.
func (vec *ValidationErrorCollection) AddField(field string, value interface{}, message string) {
	vec.Errors = append(vec.Errors, &FieldValidationError{
		FieldName:    field,
		FieldValue:   value,
		ErrorMessage: message,
	})
}

// HasErrors returns true if there are any validation errors.
func (vec *ValidationErrorCollection) HasErrors() bool {
	return len(vec.Errors) > 0
}

// ToAppError converts the collection to an AppError, or nil when empty.
func (vec *ValidationErrorCollection) ToAppError() *AppError {
	if !vec.HasErrors() {
		return nil
	}

	messages := make([]string, 0, len(vec.Errors))
	context := make(map[string]interface{})

	for _, err := range vec.Errors {
		messages = append(messages, err.Error())
		context[err.FieldName] = err.FieldValue
	}

	return &AppError{
		Type:        ErrorTypeValidation,
		Code:        ErrCodeValidationFailed,
		Message:     strings.Join(messages, "; "),
		Context:     context,
		Recoverable: true,
	}
}

// ErrPageNotFound creates a page not found error.
func ErrPageNotFound(id string) *AppError {
	return NewNotFoundError(ErrCodePageNotFound, "page not found").WithPage(id)
}

// ErrInvalidPath creates a path validation error. cause may be nil.
func ErrInvalidPath(path string, cause error) *AppError {
	ae := NewValidationError(ErrCodeInvalidPath, "invalid path: "+path)
	ae.Cause = cause
	return ae
}
