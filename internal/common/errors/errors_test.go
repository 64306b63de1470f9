package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		code         ErrorCode
		notFound     bool
		validation   bool
		unauthorized bool
		internal     bool
	}{
		{ErrCodeProjectNotFound, true, false, false, false},
		{ErrCodeTaskNotFound, true, false, false, false},
		{ErrCodeBadRequest, false, true, false, false},
		{ErrCodeInitDataExpired, false, false, true, false},
		{ErrCodeNotOwner, false, false, true, false},
		{ErrCodeDatabaseError, false, false, false, true},
		{ErrCodeAlreadyMember, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "x")
			assert.Equal(t, tt.notFound, err.IsNotFound())
			assert.Equal(t, tt.validation, err.IsValidation())
			assert.Equal(t, tt.unauthorized, err.IsUnauthorized())
			assert.Equal(t, tt.internal, err.IsInternal())
		})
	}
}

func TestWrapf(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrapf(cause, ErrCodeBadRequest, "bad %s #%d", "field", 2)

	assert.Equal(t, "bad field #2", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[BAD_REQUEST] bad field #2: boom", err.Error())
}

func TestAsAppError(t *testing.T) {
	inner := NewNotFoundError("route", "/nowhere")
	wrapped := stderrors.Join(stderrors.New("outer"), inner)

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.Equal(t, "/nowhere", got.Details["id"])

	_, ok = AsAppError(nil)
	assert.False(t, ok)
}
