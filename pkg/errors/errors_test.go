package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "not_found error (code 404): gone", FromStatus(404, "gone").Error())
	assert.Equal(t, "model error: empty completion", New(ErrorTypeModel, "empty completion").Error())
}

func TestSentinelsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("analyze fridge-tracker: %w", ErrProjectNotFound)
	assert.True(t, stderrors.Is(err, ErrProjectNotFound))
	assert.False(t, stderrors.Is(err, ErrDescriptionTooShort))

	invalid := &Error{Type: ErrorTypeValidation, Message: "idea must not contain links"}
	assert.True(t, stderrors.Is(invalid, ErrInvalidInput))
	assert.False(t, stderrors.Is(invalid, ErrDescriptionTooShort))
}

func TestWrapUnwraps(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := Wrap(ErrorTypeNetwork, cause, "GET /software/x")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrorTypeNetwork, TypeOf(fmt.Errorf("outer: %w", err)))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(cause))
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{404, ErrorTypeNotFound},
		{403, ErrorTypeAuth},
		{429, ErrorTypeRateLimit},
		{502, ErrorTypeServerError},
		{418, ErrorTypeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromStatus(tt.code, "").Type, "status %d", tt.code)
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeModel))
	assert.False(t, IsRetryable(ErrorTypeNotFound))
	assert.False(t, IsRetryable(ErrorTypeValidation))

	assert.True(t, IsRetryableStatusCode(0))
	assert.True(t, IsRetryableStatusCode(429))
	assert.True(t, IsRetryableStatusCode(503))
	assert.False(t, IsRetryableStatusCode(404))
	assert.False(t, IsRetryableStatusCode(400))
}
