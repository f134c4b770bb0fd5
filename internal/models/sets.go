package models

import "strings"

// AddTag adds tag unless an equal tag (case-insensitive) is already present.
// It reports whether the list changed.
func (c *Contact) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return false
		}
	}
	c.Tags = append(c.Tags, tag)
	return true
}

func (c *Contact) RemoveTag(tag string) bool {
	for i, t := range c.Tags {
		if strings.EqualFold(t, strings.TrimSpace(tag)) {
			c.Tags = append(c.Tags[:i:i], c.Tags[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Contact) HasJob(jobID uint) bool {
	for _, id := range c.LinkedJobIDs {
		if id == jobID {
			return true
		}
	}
	return false
}

// LinkJob adds jobID to the linked set. Linking twice is a no-op.
func (c *Contact) LinkJob(jobID uint) bool {
	if c.HasJob(jobID) {
		return false
	}
	c.LinkedJobIDs = append(c.LinkedJobIDs, jobID)
	return true
}

// UnlinkJob removes jobID. Unlinking an absent id is a no-op.
func (c *Contact) UnlinkJob(jobID uint) bool {
	for i, id := range c.LinkedJobIDs {
		if id == jobID {
			c.LinkedJobIDs = append(c.LinkedJobIDs[:i:i], c.LinkedJobIDs[i+1:]...)
			return true
		}
	}
	return false
}

const (
	MinStrength = 0
	MaxStrength = 100
)

// ClampStrength keeps relationship strength within MinStrength..MaxStrength.
func ClampStrength(v int) int {
	switch {
	case v < MinStrength:
		return MinStrength
	case v > MaxStrength:
		return MaxStrength
	}
	return v
}
