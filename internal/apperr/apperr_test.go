package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := fmt.Errorf("load: %w", NotFound("grant", "g-1"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `load: grant "g-1"`, Message(err))
}

func TestValidation(t *testing.T) {
	err := Validation("invalid base64 data")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "invalid base64 data", Message(err))
}

func TestExternal(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := External("gemini", cause)

	var ext *ExternalServiceError
	assert.True(t, errors.As(err, &ext))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "gemini: quota exceeded", Message(err))
}
