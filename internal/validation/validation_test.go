package validation

import (
	"errors"
	"testing"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_JobRequiredFields(t *testing.T) {
	err := Struct(dtos.JobCreationRequest{JobLink: "not a url"})
	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Fields["company_name"])
	assert.Equal(t, "is required", verr.Fields["role_title"])
	assert.Equal(t, "must be a valid URL", verr.Fields["job_link"])
}

func TestStruct_ContactShapes(t *testing.T) {
	ok := dtos.ContactRequest{FirstName: "Ada", Email: "ada@example.com", Phone: "+44 (20) 7946-0958", RelationshipStrength: 50}
	assert.NoError(t, Struct(ok))

	bad := dtos.ContactRequest{FirstName: "Ada", Email: "ada-at-example", Phone: "call me", RelationshipStrength: 101}
	err := Struct(bad)
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "phone")
	assert.Equal(t, "must be at most 100", verr.Fields["relationship_strength"])
}

func TestStruct_InteractionDeltaBounds(t *testing.T) {
	assert.NoError(t, Struct(dtos.InteractionRequest{Type: "call", RelationshipChange: -10}))
	assert.Error(t, Struct(dtos.InteractionRequest{Type: "call", RelationshipChange: 11}))
	assert.Error(t, Struct(dtos.InteractionRequest{RelationshipChange: 0}))
}

func TestSalaryRange(t *testing.T) {
	cases := []struct {
		min, max string
		field    string
	}{
		{"50000", "80000", ""},
		{"", "80k", ""},
		{"90k", "80000", "salary_min"},
		{"lots", "", "salary_min"},
		{"", "??", "salary_max"},
	}
	for _, tc := range cases {
		verr := apperrors.NewValidationError()
		SalaryRange(tc.min, tc.max, verr)
		if tc.field == "" {
			assert.False(t, verr.HasErrors(), "%s-%s", tc.min, tc.max)
			continue
		}
		assert.Contains(t, verr.Fields, tc.field, "%s-%s", tc.min, tc.max)
	}
}

func TestTranslate_NonValidatorError(t *testing.T) {
	err := Translate(errors.New("unexpected EOF"))
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "unexpected EOF", verr.Fields["body"])
}
