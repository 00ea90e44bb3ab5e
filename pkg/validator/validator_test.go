package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type token struct {
	Type          string `json:"type" validate:"required,oneof=SPOTIFY"`
	Authorization string `json:"authorization" validate:"required"`
}

type createRoom struct {
	Token token `json:"token" validate:"required"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	errs, ok := v.Validate(createRoom{Token: token{Type: "SPOTIFY", Authorization: "Bearer x"}})
	assert.True(t, ok)
	assert.Empty(t, errs)

	errs, ok = v.Validate(createRoom{Token: token{Type: "DEEZER"}})
	require.False(t, ok)
	require.Len(t, errs, 2)

	codes := []string{errs[0].Code, errs[1].Code}
	assert.ElementsMatch(t, []string{"ONEOF", "REQUIRED"}, codes)
	for _, e := range errs {
		assert.Contains(t, e.Field, "token.")
		assert.NotEmpty(t, e.Message)
	}
}
