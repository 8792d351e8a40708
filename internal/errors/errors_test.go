package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	err := NewRenderError(ErrCodeRenderFailed, "failed to render page", fmt.Errorf("boom")).
		WithPage("abc").
		WithFile("pages/home.yaml")

	msg := err.Error()
	assert.Contains(t, msg, "[ERR_RENDER_FAILED]")
	assert.Contains(t, msg, "page:abc")
	assert.Contains(t, msg, "pages/home.yaml")
	assert.Contains(t, msg, "failed to render page: boom")
}

func TestAppErrorIsAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewIOError(ErrCodeStoreFailed, "write failed", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypeIO, Code: ErrCodeStoreFailed}))
	assert.False(t, errors.Is(err, &AppError{Type: ErrorTypeIO, Code: ErrCodeExportFailed}))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError(ErrCodeInvalidPage, "bad"), http.StatusBadRequest},
		{"not found", ErrPageNotFound("x"), http.StatusNotFound},
		{"io", NewIOError(ErrCodeStoreFailed, "x", nil), http.StatusInternalServerError},
		{"foreign", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrPageNotFound("x")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestGetErrorTypeAndRecoverable(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(fmt.Errorf("x: %w", ErrPageNotFound("p"))))
	assert.Equal(t, ErrorTypeInternal, GetErrorType(errors.New("plain")))

	assert.True(t, IsRecoverable(WrapRender(errors.New("w"), "p")))
	assert.False(t, IsRecoverable(NewIOError(ErrCodeStoreFailed, "x", nil)))
	assert.False(t, IsRecoverable(errors.New("plain")))

	cause := errors.New("no such file")
	pathErr := ErrInvalidPath("pages", cause)
	assert.True(t, IsValidation(pathErr))
	assert.ErrorIs(t, pathErr, cause)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(pathErr))
}

func TestWrapPreservesPage(t *testing.T) {
	inner := ErrPageNotFound("p1")
	wrapped := Wrap(inner, ErrorTypeIO, ErrCodeStoreFailed, "load failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, "p1", wrapped.PageID)
	assert.True(t, IsNotFound(wrapped.Cause))
	assert.Nil(t, Wrap(nil, ErrorTypeIO, "", ""))
}

func TestValidationErrorCollection(t *testing.T) {
	var vec ValidationErrorCollection
	assert.Nil(t, vec.ToAppError())

	vec.AddField("server.port", -1, "out of range")
	vec.AddField("render.custom_code", "weird", "unknown policy")

	ae := vec.ToAppError()
	require.NotNil(t, ae)
	assert.Equal(t, ErrorTypeValidation, ae.Type)
	assert.Contains(t, ae.Message, "server.port")
	assert.Equal(t, "weird", ae.Context["render.custom_code"])
	assert.Equal(t, "validation failed with 2 errors", vec.Error())
}
