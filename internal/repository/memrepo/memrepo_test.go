package memrepo

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobs_IDsArePerTable(t *testing.T) {
	ctx := context.Background()
	m := NewJobs()

	acme, err := m.FindOrCreateCompany(ctx, "Acme")
	require.NoError(t, err)
	globex, err := m.FindOrCreateCompany(ctx, "Globex")
	require.NoError(t, err)

	job := &models.Job{CompanyID: acme.ID, Title: "Dev"}
	require.NoError(t, m.CreateJob(ctx, job))
	require.NoError(t, m.AppendEvent(ctx, &models.JobEvent{JobID: job.ID, Status: models.StatusApplied}))
	second := &models.Job{CompanyID: globex.ID, Title: "Designer"}
	require.NoError(t, m.CreateJob(ctx, second))

	assert.Equal(t, uint(1), acme.ID)
	assert.Equal(t, uint(2), globex.ID)
	assert.Equal(t, uint(1), job.ID)
	assert.Equal(t, uint(2), second.ID)

	jobs, err := m.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	got, err := m.GetJob(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Dev", got.Title)
	require.Len(t, got.History, 1)
	assert.Equal(t, uint(1), got.History[0].ID)
}

func TestJobs_FindOrCreateCompanyIgnoresCase(t *testing.T) {
	ctx := context.Background()
	m := NewJobs()

	first, err := m.FindOrCreateCompany(ctx, "Acme")
	require.NoError(t, err)
	again, err := m.FindOrCreateCompany(ctx, "acme")
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Acme", again.Name)
	assert.Len(t, m.Companies, 1)
}

func TestAnalyses_ConcurrentCreatesGetDistinctVersions(t *testing.T) {
	ctx := context.Background()
	m := NewAnalyses()

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.CreateAnalysis(ctx, &models.Analysis{JobID: 7, Kind: models.KindJobMatch}))
		}()
	}
	wg.Wait()
	require.NoError(t, m.CreateAnalysis(ctx, &models.Analysis{JobID: 8, Kind: models.KindJobMatch}))

	var versions []int
	for _, r := range m.Rows {
		if r.JobID == 7 {
			versions = append(versions, r.Version)
		}
	}
	sort.Ints(versions)
	require.Len(t, versions, n)
	for i, v := range versions {
		assert.Equal(t, i+1, v)
	}

	latest, err := m.LatestAnalysis(ctx, 8, models.KindJobMatch)
	require.NoError(t, err)
	assert.Equal(t, 1, latest.Version)
}
