package conduit

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Messages(t *testing.T) {
	err := &ValidationError{
		StatusCode: http.StatusUnprocessableEntity,
		Errors: map[string][]string{
			"username": {"has already been taken"},
			"email":    {"can't be blank", "is invalid"},
		},
	}

	assert.Equal(t, []string{
		"email can't be blank",
		"email is invalid",
		"username has already been taken",
	}, err.Messages())
	assert.Contains(t, err.Error(), "status 422")
}

func TestValidationErrors_Unwraps(t *testing.T) {
	inner := &ValidationError{StatusCode: http.StatusUnprocessableEntity, Errors: map[string][]string{"email": {"is invalid"}}}

	fields, ok := ValidationErrors(fmt.Errorf("login: %w", inner))
	assert.True(t, ok)
	assert.Equal(t, inner.Errors, fields)

	_, ok = ValidationErrors(&StatusError{StatusCode: http.StatusInternalServerError})
	assert.False(t, ok)
}
