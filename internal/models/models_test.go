package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestAnalysis_VersionIsUniquePerJobAndKind(t *testing.T) {
	s, err := schema.Parse(&Analysis{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	var unique *schema.Index
	for _, idx := range s.ParseIndexes() {
		if idx.Name == "idx_analysis_version" {
			unique = idx
		}
	}
	require.NotNil(t, unique)
	assert.Equal(t, "UNIQUE", unique.Class)

	var cols []string
	for _, f := range unique.Fields {
		cols = append(cols, f.DBName)
	}
	assert.Equal(t, []string{"job_id", "kind", "version"}, cols)
}
