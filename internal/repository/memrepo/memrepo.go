// Package memrepo keeps every repository in memory. It backs the service,
// handler and client tests, and mirrors the gorm repositories' semantics
// (not-found errors, history moving job status, versioned analyses).
package memrepo

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/models"
)

// Clock stamps CreatedAt/UpdatedAt. Tests replace it to control time.
type Clock func() time.Time

type Jobs struct {
	mu sync.Mutex

	Companies []models.Company
	ByID      map[uint]*models.Job
	Events    []models.JobEvent
	// FailEvent, when set, is returned by AppendEvent.
	FailEvent error
	Now       Clock

	companyID, jobID, eventID uint
}

func NewJobs() *Jobs {
	return &Jobs{ByID: map[uint]*models.Job{}, Now: time.Now}
}

// SetFailEvent sets FailEvent under the lock, for use while a server is
// serving requests.
func (m *Jobs) SetFailEvent(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailEvent = err
}

// EventCount is the number of history rows stored for a job.
func (m *Jobs) EventCount(jobID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.Events {
		if ev.JobID == jobID {
			n++
		}
	}
	return n
}

func (m *Jobs) FindOrCreateCompany(_ context.Context, name string) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Companies {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	now := m.Now()
	m.companyID++
	c := models.Company{ID: m.companyID, Name: name, CreatedAt: now, UpdatedAt: now}
	m.Companies = append(m.Companies, c)
	return &c, nil
}

func (m *Jobs) FindCompanyByName(_ context.Context, name string) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Companies {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("company", name)
}

func (m *Jobs) ListCompanies(context.Context) ([]models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Companies), nil
}

func (m *Jobs) CreateJob(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobID++
	job.ID = m.jobID
	job.CreatedAt = m.Now()
	job.UpdatedAt = job.CreatedAt
	if job.Status == "" {
		job.Status = models.StatusApplied
	}
	cp := *job
	m.ByID[job.ID] = &cp
	return nil
}

func (m *Jobs) GetJob(_ context.Context, id uint) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.ByID[id]
	if !ok {
		return nil, apperrors.NotFound("job", id)
	}
	cp := *j
	cp.History = m.eventsFor(id)
	return &cp, nil
}

func (m *Jobs) ListJobs(context.Context) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ordered(), nil
}

func (m *Jobs) ordered() []models.Job {
	out := make([]models.Job, 0, len(m.ByID))
	for id := uint(1); id <= m.jobID; id++ {
		if j, ok := m.ByID[id]; ok {
			out = append(out, *j)
		}
	}
	return out
}

func (m *Jobs) ActiveJobsForCompany(_ context.Context, companyID uint) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Job
	for _, j := range m.ordered() {
		switch j.Status {
		case models.StatusRejected, models.StatusOffer, models.StatusWithdrawn:
			continue
		}
		if j.CompanyID == companyID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (m *Jobs) SaveJob(_ context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ByID[job.ID]; !ok {
		return apperrors.NotFound("job", job.ID)
	}
	job.UpdatedAt = m.Now()
	cp := *job
	cp.History = nil
	m.ByID[job.ID] = &cp
	return nil
}

func (m *Jobs) DeleteJob(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ByID[id]; !ok {
		return apperrors.NotFound("job", id)
	}
	delete(m.ByID, id)
	return nil
}

// AppendEvent stores the row and moves the job's status with it.
func (m *Jobs) AppendEvent(_ context.Context, event *models.JobEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEvent != nil {
		return m.FailEvent
	}
	j, ok := m.ByID[event.JobID]
	if !ok {
		return apperrors.NotFound("job", event.JobID)
	}
	m.eventID++
	event.ID = m.eventID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = m.Now()
	}
	m.Events = append(m.Events, *event)
	if event.Status != "" && event.Status != j.Status {
		j.Status = event.Status
		j.UpdatedAt = m.Now()
	}
	return nil
}

func (m *Jobs) ListEvents(_ context.Context, jobID uint) ([]models.JobEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsFor(jobID), nil
}

func (m *Jobs) eventsFor(jobID uint) []models.JobEvent {
	var out []models.JobEvent
	for _, e := range m.Events {
		if e.JobID == jobID {
			out = append(out, e)
		}
	}
	return out
}

type Contacts struct {
	mu sync.Mutex

	ByID         map[uint]*models.Contact
	Interactions []models.Interaction
	// Saves counts SaveContact calls.
	Saves int
	// FailEmail makes CreateContact reject that address.
	FailEmail string
	Now       Clock

	nextID uint
}

func NewContacts() *Contacts {
	return &Contacts{ByID: map[uint]*models.Contact{}, Now: time.Now}
}

func cloneContact(c *models.Contact) *models.Contact {
	cp := *c
	cp.Tags = slices.Clone(c.Tags)
	cp.MutualConnections = slices.Clone(c.MutualConnections)
	cp.LinkedJobIDs = slices.Clone(c.LinkedJobIDs)
	cp.Interactions = nil
	return &cp
}

func (m *Contacts) CreateContact(_ context.Context, c *models.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEmail != "" && strings.EqualFold(c.Email, m.FailEmail) {
		return apperrors.New(apperrors.ErrTypeConflict, "contact email already exists", nil)
	}
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = m.Now()
	c.UpdatedAt = c.CreatedAt
	m.ByID[c.ID] = cloneContact(c)
	return nil
}

func (m *Contacts) GetContact(_ context.Context, id uint) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.ByID[id]
	if !ok {
		return nil, apperrors.NotFound("contact", id)
	}
	return cloneContact(c), nil
}

func (m *Contacts) ListContacts(context.Context) ([]models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ordered(), nil
}

func (m *Contacts) ordered() []models.Contact {
	out := make([]models.Contact, 0, len(m.ByID))
	for id := uint(1); id <= m.nextID; id++ {
		if c, ok := m.ByID[id]; ok {
			out = append(out, *cloneContact(c))
		}
	}
	return out
}

func (m *Contacts) ContactsForJob(_ context.Context, jobID uint) ([]models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Contact
	for _, c := range m.ordered() {
		if c.HasJob(jobID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Contacts) SaveContact(_ context.Context, c *models.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ByID[c.ID]; !ok {
		return apperrors.NotFound("contact", c.ID)
	}
	m.Saves++
	c.UpdatedAt = m.Now()
	m.ByID[c.ID] = cloneContact(c)
	return nil
}

func (m *Contacts) DeleteContact(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ByID[id]; !ok {
		return apperrors.NotFound("contact", id)
	}
	delete(m.ByID, id)
	return nil
}

func (m *Contacts) AddInteraction(_ context.Context, in *models.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.ByID[in.ContactID]
	if !ok {
		return apperrors.NotFound("contact", in.ContactID)
	}
	in.ID = uint(len(m.Interactions) + 1)
	in.CreatedAt = m.Now()
	m.Interactions = append(m.Interactions, *in)
	c.RelationshipStrength = models.ClampStrength(c.RelationshipStrength + in.RelationshipChange)
	c.UpdatedAt = in.CreatedAt
	return nil
}

func (m *Contacts) ListInteractions(_ context.Context, contactID uint) ([]models.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Interaction
	for i := len(m.Interactions) - 1; i >= 0; i-- {
		if m.Interactions[i].ContactID == contactID {
			out = append(out, m.Interactions[i])
		}
	}
	return out, nil
}

type Research struct {
	mu sync.Mutex

	ByCompany map[uint]*models.CompanyResearch

	nextID uint
}

func NewResearch() *Research {
	return &Research{ByCompany: map[uint]*models.CompanyResearch{}}
}

func (m *Research) GetResearch(_ context.Context, companyID uint) (*models.CompanyResearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.ByCompany[companyID]
	if !ok {
		return nil, apperrors.NotFound("company research", companyID)
	}
	cp := *r
	return &cp, nil
}

// SaveResearch upserts on company id, like the gorm repository.
func (m *Research) SaveResearch(_ context.Context, res *models.CompanyResearch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.ByCompany[res.CompanyID]; ok {
		res.ID = prev.ID
	}
	if res.ID == 0 {
		m.nextID++
		res.ID = m.nextID
	}
	cp := *res
	m.ByCompany[res.CompanyID] = &cp
	return nil
}

func (m *Research) SetFollowing(_ context.Context, id uint, following bool) (*models.CompanyResearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.ByCompany {
		if r.ID == id {
			r.Following = following
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("company research", id)
}

type Analyses struct {
	mu sync.Mutex

	Rows []models.Analysis
	Now  Clock
}

func NewAnalyses() *Analyses {
	return &Analyses{Now: time.Now}
}

func (m *Analyses) LatestAnalysis(_ context.Context, jobID uint, kind string) (*models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Rows) - 1; i >= 0; i-- {
		if m.Rows[i].JobID == jobID && m.Rows[i].Kind == kind {
			a := m.Rows[i]
			return &a, nil
		}
	}
	return nil, apperrors.NotFound(kind+" analysis for job", jobID)
}

func (m *Analyses) AnalysisHistory(_ context.Context, jobID uint, kind string, limit int) ([]models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Analysis
	for i := len(m.Rows) - 1; i >= 0 && len(out) < limit; i-- {
		if m.Rows[i].JobID == jobID && m.Rows[i].Kind == kind {
			out = append(out, m.Rows[i])
		}
	}
	return out, nil
}

func (m *Analyses) CreateAnalysis(_ context.Context, a *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	version := 0
	for _, r := range m.Rows {
		if r.JobID == a.JobID && r.Kind == a.Kind && r.Version > version {
			version = r.Version
		}
	}
	a.Version = version + 1
	a.ID = uint(len(m.Rows) + 1)
	a.CreatedAt = m.Now()
	m.Rows = append(m.Rows, *a)
	return nil
}

func (m *Analyses) StaleJobIDs(_ context.Context, kind string, cutoff time.Time) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := map[uint]time.Time{}
	var order []uint
	for _, r := range m.Rows {
		if r.Kind != kind {
			continue
		}
		prev, seen := latest[r.JobID]
		if !seen {
			order = append(order, r.JobID)
		}
		if !seen || r.CreatedAt.After(prev) {
			latest[r.JobID] = r.CreatedAt
		}
	}
	var out []uint
	for _, id := range order {
		if latest[id].Before(cutoff) {
			out = append(out, id)
		}
	}
	return out, nil
}

type EmailState struct {
	mu sync.Mutex

	User      models.User
	Processed map[string]bool
}

func NewEmailState(historyID uint64) *EmailState {
	return &EmailState{
		User:      models.User{ID: 1, Email: "default", LastHistoryID: historyID},
		Processed: map[string]bool{},
	}
}

func (m *EmailState) DefaultUser(context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.User
	return &u, nil
}

func (m *EmailState) UpdateHistoryID(_ context.Context, _ uint, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.User.LastHistoryID = id
	return nil
}

func (m *EmailState) IsProcessed(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Processed[id], nil
}

func (m *EmailState) MarkProcessed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Processed[id] = true
	return nil
}
