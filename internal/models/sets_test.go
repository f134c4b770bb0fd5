package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContact_AddTagIsSetLike(t *testing.T) {
	c := Contact{Tags: []string{"Recruiter"}}

	assert.False(t, c.AddTag("recruiter"))
	assert.False(t, c.AddTag("  "))
	assert.True(t, c.AddTag("Go"))
	assert.False(t, c.AddTag("Go"))
	assert.Equal(t, []string{"Recruiter", "Go"}, c.Tags)

	assert.True(t, c.RemoveTag("RECRUITER"))
	assert.False(t, c.RemoveTag("missing"))
	assert.Equal(t, []string{"Go"}, c.Tags)
}

func TestContact_LinkUnlinkNoOps(t *testing.T) {
	c := Contact{LinkedJobIDs: []uint{3}}

	assert.False(t, c.LinkJob(3))
	assert.Equal(t, []uint{3}, c.LinkedJobIDs)

	assert.True(t, c.LinkJob(7))
	assert.Equal(t, []uint{3, 7}, c.LinkedJobIDs)

	assert.False(t, c.UnlinkJob(9))
	assert.Equal(t, []uint{3, 7}, c.LinkedJobIDs)

	assert.True(t, c.UnlinkJob(3))
	assert.Equal(t, []uint{7}, c.LinkedJobIDs)
	assert.True(t, c.HasJob(7))
}

func TestClampStrength(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 0}, {0, 0}, {55, 55}, {100, 100}, {130, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampStrength(tt.in))
	}
}
