package validate

import (
	"testing"

	"github.com/playerfinder/playerfinder/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckerEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"player@example.com", true},
		{`"a b"@x.io`, true},
		{"a@b", false},
		{"a@[127.0.0.1]", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			var c Checker
			c.Check("email", tt.email, Email)
			assert.Equal(t, tt.valid, c.Err() == nil)
		})
	}
}

func TestCheckerCollectsFields(t *testing.T) {
	var c Checker
	c.Check("email", "", Email)
	c.Check("password", "abc", Password)
	c.Check("avatar", "", Avatar)
	c.Check("resetPasswordUrl", "not a url", URL)

	appErr, ok := apperr.As(c.Err())
	require.True(t, ok)
	assert.Equal(t, 422, appErr.Status)
	require.Len(t, appErr.Fields, 3)
	assert.Equal(t, apperr.FieldError{Field: "email", Rule: "required", Message: "email is required"}, appErr.Fields[0])
	assert.Equal(t, apperr.FieldError{Field: "password", Rule: "min", Message: "password must be at least 4 characters"}, appErr.Fields[1])
	assert.Equal(t, "url", appErr.Fields[2].Rule)
}

func TestCheckerEmpty(t *testing.T) {
	var c Checker
	c.Check("avatar", "https://cdn.example.com/a.png", Avatar)
	assert.NoError(t, c.Err())
}
