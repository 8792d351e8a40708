package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating an AppError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *AppError {
	if err == nil {
		return nil
	}

	var ae *AppError
	if errors.As(err, &ae) {
		return &AppError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       ae,
			Context:     ae.Context,
			PageID:      ae.PageID,
			FilePath:    ae.FilePath,
			Recoverable: ae.Recoverable,
		}
	}

	return &AppError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeValidation || errType == ErrorTypeRender,
	}
}

// WrapStore wraps a persistence failure for the given page.
func WrapStore(err error, message, pageID string) *AppError {
	ae := Wrap(err, ErrorTypeIO, ErrCodeStoreFailed, message)
	if ae != nil {
		ae.PageID = pageID
	}
	return ae
}

// WrapValidation wraps an error as a validation error
func WrapValidation(err error, code, message string) *AppError {
	return Wrap(err, ErrorTypeValidation, code, message)
}

// WrapRender wraps a document rendering failure.
func WrapRender(err error, pageID string) *AppError {
	ae := Wrap(err, ErrorTypeRender, ErrCodeRenderFailed, "failed to render page")
	if ae != nil {
		ae.PageID = pageID
	}
	return ae
}

// GetErrorType returns the category of err, or internal for foreign errors.
func GetErrorType(err error) ErrorType {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Type
	}
	return ErrorTypeInternal
}
