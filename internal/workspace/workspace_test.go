package workspace

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/client"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/filter"
	"github.com/justsurfingit/career-tracker/internal/handlers/handlertest"
	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/justsurfingit/career-tracker/internal/tasks"
	"github.com/justsurfingit/career-tracker/internal/viewstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingTransport counts requests per method.
type countingTransport struct {
	next http.RoundTripper

	mu     sync.Mutex
	counts map[string]int
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.counts[req.Method]++
	t.mu.Unlock()
	return t.next.RoundTrip(req)
}

func (t *countingTransport) count(method string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[method]
}

type fixture struct {
	srv     *handlertest.Server
	api     *client.Client
	http    *countingTransport
	runner  *tasks.Runner
	results <-chan tasks.Result
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := handlertest.New(t)
	tr := &countingTransport{next: srv.Client().Transport, counts: map[string]int{}}
	runner := tasks.NewRunner(zap.NewNop(), 5*time.Second)
	results, stop := runner.Subscribe(8)
	t.Cleanup(func() {
		runner.Wait()
		stop()
	})
	return &fixture{
		srv:     srv,
		api:     client.New(srv.URL, client.WithHTTPClient(&http.Client{Transport: tr})),
		http:    tr,
		runner:  runner,
		results: results,
	}
}

func (f *fixture) jobs() *JobsManager {
	return NewJobsManager(f.api, f.api, f.runner, zap.NewNop())
}

func (f *fixture) contacts() *ContactsManager {
	return NewContactsManager(f.api, zap.NewNop())
}

func (f *fixture) nextResult(t *testing.T) tasks.Result {
	t.Helper()
	select {
	case res := <-f.results:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("no background task finished")
	}
	return tasks.Result{}
}

func TestJobsManager_CreateJobRecordsHistoryThenResearches(t *testing.T) {
	f := newFixture(t)
	m := f.jobs()
	m.View.Add()

	job, err := m.CreateJob(context.Background(), &dtos.JobCreationRequest{CompanyName: "Acme", Title: "Backend Engineer"})
	require.NoError(t, err)

	held, ok := m.Store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, "Backend Engineer", held.Title)
	assert.Equal(t, viewstate.NameList, m.View.Mode().Name())
	assert.Equal(t, 1, f.srv.Jobs.EventCount(job.ID))

	res := f.nextResult(t)
	assert.True(t, res.OK(), "research task: %v", res.Err)
	assert.Equal(t, "research:Acme", res.Name)
	assert.Equal(t, 1, f.srv.Model.Calls("company_profile"))
}

func TestJobsManager_CreateJobHistoryFailure(t *testing.T) {
	f := newFixture(t)
	m := f.jobs()
	f.srv.Jobs.SetFailEvent(errors.New("history table locked"))

	job, err := m.CreateJob(context.Background(), &dtos.JobCreationRequest{CompanyName: "Acme", Title: "Dev"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSaveFailed)
	require.NotNil(t, job)

	f.srv.Jobs.SetFailEvent(nil)
	stored, err := f.api.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dev", stored.Title)

	f.runner.Wait()
	assert.Zero(t, f.srv.Model.Calls("company_profile"))
}

func TestJobsManager_ResearchFailureDoesNotFailCreate(t *testing.T) {
	f := newFixture(t)
	m := f.jobs()
	f.srv.Model.SetFail("company_profile")

	_, err := m.CreateJob(context.Background(), &dtos.JobCreationRequest{CompanyName: "Acme", Title: "Dev"})
	require.NoError(t, err)

	res := f.nextResult(t)
	assert.False(t, res.OK())
}

func TestJobsManager_ValidatesBeforeSending(t *testing.T) {
	f := newFixture(t)
	m := f.jobs()

	_, err := m.CreateJob(context.Background(), &dtos.JobCreationRequest{
		CompanyName: "Acme", Title: "Dev", SalaryMin: "$150,000", SalaryMax: "120k",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = m.CreateJob(context.Background(), &dtos.JobCreationRequest{CompanyName: "Acme"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, f.http.count(http.MethodPost))
}

func TestJobsManager_FilterTreeAndExpansion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, req := range []dtos.JobCreationRequest{
		{CompanyName: "Acme", Title: "Dev", Industry: "Tech"},
		{CompanyName: "Globex", Title: "Designer", Industry: "Design"},
		{CompanyName: "Initech", Title: "Dev", Industry: "Tech", JobType: "Contract"},
	} {
		_, err := f.api.CreateJob(ctx, &req)
		require.NoError(t, err)
	}

	m := f.jobs()
	require.NoError(t, m.Refresh(ctx))
	m.SetFilter(filter.JobFilter{Sort: filter.JobSortCompany})

	visible := m.Visible()
	require.Len(t, visible, 3)
	assert.Equal(t, "Acme", visible[0].CompanyName())
	assert.Equal(t, "Initech", visible[2].CompanyName())

	require.NoError(t, m.SetFilterFromQuery(map[string][]string{"industry": {"Tech"}, "sort": {"company"}}))
	assert.Len(t, m.Visible(), 2)
	assert.Error(t, m.SetFilterFromQuery(map[string][]string{"sort": {"shoe_size"}}))

	m.SetFilter(filter.JobFilter{Sort: filter.JobSortCompany})
	m.SetGrouped(true)
	assert.True(t, m.Grouped())
	assert.ElementsMatch(t, []string{"industry-Tech", "industry-Design"}, m.Expansion.Keys())

	m.Expansion.Toggle("industry-Design")
	m.SetGrouped(true)
	assert.False(t, m.Expansion.IsExpanded("industry-Design"))

	m.SetGrouped(false)
	m.SetGrouped(true)
	assert.True(t, m.Expansion.IsExpanded("industry-Design"))

	tree := m.Tree()
	assert.ElementsMatch(t, visible, tree.Flatten())
}

func TestJobsManager_OpenUpdateDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.jobs()

	created, err := f.api.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: "Acme", Title: "Dev"})
	require.NoError(t, err)

	_, err = m.Open(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, m.View.Edit())

	status := models.StatusOffer
	updated, err := m.UpdateJob(ctx, created.ID, &dtos.JobUpdateRequest{Status: &status})
	require.NoError(t, err)
	held, _ := m.Store.Get(created.ID)
	assert.Equal(t, models.StatusOffer, held.Status)
	assert.Equal(t, updated.Status, held.Status)

	m.View.Select(held)
	require.NoError(t, m.DeleteJob(ctx, created.ID))
	_, ok := m.Store.Get(created.ID)
	assert.False(t, ok)
	assert.Equal(t, viewstate.NameList, m.View.Mode().Name())
}

func TestContactsManager_LinkUnlinkAreSetOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, err := f.api.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: "Acme", Title: "Dev"})
	require.NoError(t, err)

	m := f.contacts()
	c, err := m.CreateContact(ctx, &dtos.ContactRequest{FirstName: "Ada"})
	require.NoError(t, err)

	linked, err := m.LinkJob(ctx, c.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{job.ID}, linked.LinkedJobIDs)
	patches := f.http.count(http.MethodPatch)
	assert.Equal(t, 1, patches)

	again, err := m.LinkJob(ctx, c.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{job.ID}, again.LinkedJobIDs)
	assert.Equal(t, patches, f.http.count(http.MethodPatch))

	unlinked, err := m.UnlinkJob(ctx, c.ID, job.ID)
	require.NoError(t, err)
	assert.Empty(t, unlinked.LinkedJobIDs)

	_, err = m.UnlinkJob(ctx, c.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.http.count(http.MethodPatch))

	stored, err := f.api.GetContact(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.LinkedJobIDs)
}

func TestContactsManager_TagsAreCaseInsensitiveSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.contacts()

	c, err := m.CreateContact(ctx, &dtos.ContactRequest{FirstName: "Ada", Tags: []string{"Mentor"}})
	require.NoError(t, err)

	got, err := m.AddTag(ctx, c.ID, "mentor")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mentor"}, got.Tags)
	assert.Zero(t, f.http.count(http.MethodPatch))

	got, err = m.AddTag(ctx, c.ID, "Referrer")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mentor", "Referrer"}, got.Tags)

	got, err = m.RemoveTag(ctx, c.ID, "MENTOR")
	require.NoError(t, err)
	assert.Equal(t, []string{"Referrer"}, got.Tags)

	held, _ := m.Store.Get(c.ID)
	assert.Equal(t, []string{"Referrer"}, held.Tags)
}

func TestContactsManager_InteractionAndImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.contacts()

	c, err := m.CreateContact(ctx, &dtos.ContactRequest{FirstName: "Ada", RelationshipStrength: 95})
	require.NoError(t, err)

	_, err = m.AddInteraction(ctx, c.ID, &dtos.InteractionRequest{Type: "call", RelationshipChange: 10})
	require.NoError(t, err)
	held, _ := m.Store.Get(c.ID)
	assert.Equal(t, 100, held.RelationshipStrength)

	_, err = m.AddInteraction(ctx, c.ID, &dtos.InteractionRequest{Type: "call", RelationshipChange: 11})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	m.View.Import()
	res, err := m.ImportCSV(ctx, strings.NewReader("firstName,company\nJohn,\"Acme, Inc.\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, viewstate.NameList, m.View.Mode().Name())

	m.SetFilter(filter.ContactFilter{Sort: filter.ContactSortName})
	names := []string{}
	for _, v := range m.Visible() {
		names = append(names, v.FirstName)
	}
	assert.Equal(t, []string{"Ada", "John"}, names)
}

func TestDashboard_PanelsLoadLazilyAndFailIndependently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, err := f.api.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: "Acme", Title: "Dev"})
	require.NoError(t, err)

	d := NewDashboard(f.api, *job, zap.NewNop())
	require.NoError(t, d.Select(ctx, PanelJobMatch))
	assert.Equal(t, PanelJobMatch, d.Active())
	assert.Equal(t, 1, f.srv.Model.Calls("job_match"))
	assert.Zero(t, f.srv.Model.Calls("company_profile"))

	require.NoError(t, d.Select(ctx, PanelJobMatch))
	assert.Equal(t, 1, f.srv.Model.Calls("job_match"))

	p, _ := d.Panel(PanelJobMatch)
	require.NoError(t, p.Refresh(ctx))
	assert.Equal(t, 2, f.srv.Model.Calls("job_match"))
	assert.False(t, p.State().Cached)

	f.srv.Model.SetFail("skills_gap")
	err = d.LoadAll(ctx)
	require.Error(t, err)

	for _, st := range d.States() {
		if st.Kind == PanelSkillsGap {
			assert.False(t, st.Loaded)
			assert.Error(t, st.Err)
			continue
		}
		assert.True(t, st.Loaded, st.Kind)
		assert.NoError(t, st.Err, st.Kind)
	}

	f.srv.Model.SetFail()
	require.NoError(t, d.Select(ctx, PanelSkillsGap))
	gap, _ := d.Panel(PanelSkillsGap)
	assert.JSONEq(t, `{"matching_skills": ["go"], "missing_skills": [{"skill": "rust", "importance": "high"}]}`, string(gap.State().Data))

	assert.Error(t, d.Select(ctx, PanelKind("salary_trends")))
}

func TestDashboard_JobMatchWeights(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, err := f.api.CreateJob(ctx, &dtos.JobCreationRequest{CompanyName: "Acme", Title: "Dev"})
	require.NoError(t, err)

	d := NewDashboard(f.api, *job, zap.NewNop())
	d.SetWeights(map[string]float64{"skills": 1, "experience": 1})
	require.NoError(t, d.Select(ctx, PanelJobMatch))

	d.SetWeights(map[string]float64{"skills": -1})
	p, _ := d.Panel(PanelJobMatch)
	err = p.Refresh(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.True(t, p.State().Loaded)
}
