package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewFieldError("code", "could not save record", cause)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "code", fieldErr.Field)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "could not save record")
}

func TestFieldError_NoCause(t *testing.T) {
	err := NewFieldError("email", "required", nil)
	assert.Equal(t, "email: required", err.Error())
}

func TestUserError(t *testing.T) {
	cause := errors.New("status 500")
	err := NewUserError("Something went wrong", cause)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "Something went wrong", userErr.UserMessage)
	assert.ErrorIs(t, err, cause)
}
