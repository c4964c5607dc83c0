package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected ErrorType
	}{
		{http.StatusUnprocessableEntity, ErrorTypeValidation},
		{http.StatusBadRequest, ErrorTypeValidation},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusConflict, ErrorTypeConflict},
		{http.StatusForbidden, ErrorTypeUnauthorized},
		{http.StatusInternalServerError, ErrorTypeExternal},
		{http.StatusServiceUnavailable, ErrorTypeExternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "lims request failed", "")
			assert.Equal(t, tt.expected, err.Type)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestIsInlineValidation(t *testing.T) {
	wrapped := fmt.Errorf("submit accession: %w", FromStatus(http.StatusUnprocessableEntity, "invalid", ""))
	assert.True(t, IsInlineValidation(wrapped))
	assert.False(t, IsInlineValidation(FromStatus(http.StatusBadRequest, "bad", "")))
	assert.False(t, IsInlineValidation(fmt.Errorf("timeout")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(FromStatus(http.StatusUnprocessableEntity, "x", "")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(FromStatus(http.StatusInternalServerError, "x", "")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NewNotFoundError("missing")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewValidationError("id is required")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("boom")))
}

func TestAppError_Error(t *testing.T) {
	err := FromStatus(http.StatusConflict, "accession already submitted", "")
	assert.Equal(t, "CONFLICT: accession already submitted (status 409)", err.Error())

	inner := NewInternalError("journal insert", fmt.Errorf("connection reset"))
	assert.Equal(t, "INTERNAL: journal insert: connection reset", inner.Error())
}
