package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abc", 3, "abc"},
		{"ascii", "abcdef", 4, "abcd"},
		{"inside two byte rune", "aé", 2, "a"},
		{"after two byte rune", "aéb", 3, "aé"},
		{"inside four byte rune", "x😀", 3, "x"},
		{"zero", "é", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clip(tt.in, tt.n))
		})
	}
}

func TestDescribeJob_LongMultibyteDescriptionStaysValid(t *testing.T) {
	job := &models.Job{
		Title:       "Dev",
		Description: "a" + strings.Repeat("日本", maxPromptInput),
	}

	got := describeJob(job)
	assert.True(t, utf8.ValidString(got))
	assert.Less(t, len(got), maxPromptInput+200)
}
