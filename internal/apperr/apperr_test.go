package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"conflict", Conflict("group request already exists"), http.StatusConflict},
		{"not found", NotFound("group not found"), http.StatusNotFound},
		{"invalid state", InvalidState("cannot remove master from group"), http.StatusBadRequest},
		{"unprocessable", Unprocessable("user is already in the group"), http.StatusUnprocessableEntity},
		{"gone", Gone("token has expired"), http.StatusGone},
		{"wrapped", fmt.Errorf("accept: %w", NotFound("request not found")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestErrorCodes(t *testing.T) {
	assert.Equal(t, CodeBadRequest, Conflict("x").Code)
	assert.Equal(t, CodeUnauthorized, Unauthorized("x").Code)
	assert.Equal(t, CodeForbidden, Forbidden("x").Code)
	assert.Equal(t, CodeTokenExpired, Gone("x").Code)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := NotFound("user not found").Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "db down")
}
