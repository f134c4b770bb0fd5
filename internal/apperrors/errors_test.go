package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	v := NewValidationError()
	v.Add("title", "is required")

	cases := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ""},
		{"not found", NotFound("job", 7), ErrTypeNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", NotFound("job", 7)), ErrTypeNotFound},
		{"sentinel", fmt.Errorf("x: %w", ErrNotFound), ErrTypeNotFound},
		{"validation", v, ErrTypeInvalidInput},
		{"unavailable", Unavailable("llm down", errors.New("timeout")), ErrTypeUnavailable},
		{"plain", errors.New("boom"), ErrTypeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TypeOf(tc.err))
		})
	}
}

func TestDomainError_IsSentinel(t *testing.T) {
	err := fmt.Errorf("get contact: %w", NotFound("contact", 3))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "get contact: contact 3 not found", err.Error())
}

func TestDomainError_CarriesStack(t *testing.T) {
	err := Internal("save job", errors.New("db closed"))
	assert.NotEmpty(t, err.Stack)
	assert.Equal(t, "save job: db closed", err.Error())
}

func TestValidationError(t *testing.T) {
	v := NewValidationError()
	assert.NoError(t, v.OrNil())

	v.Add("title", "is required")
	v.Add("company", "is required")
	err := v.OrNil()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: company: is required; title: is required", err.Error())
}
