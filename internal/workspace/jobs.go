package workspace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/client"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/filter"
	"github.com/justsurfingit/career-tracker/internal/grouping"
	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/justsurfingit/career-tracker/internal/store"
	"github.com/justsurfingit/career-tracker/internal/tasks"
	"github.com/justsurfingit/career-tracker/internal/validation"
	"go.uber.org/zap"
)

// ErrSaveFailed means a multi-step save stopped part way. The entity created
// by the earlier steps still exists on the server.
var ErrSaveFailed = errors.New("save failed")

// fetchPageLimit is the largest page the list endpoints serve.
const fetchPageLimit = 100

type JobsAPI interface {
	CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error)
	ListJobs(ctx context.Context, f filter.JobFilter, page, limit int) (*dtos.ListResponse[models.Job], error)
	GetJob(ctx context.Context, id uint) (*models.Job, error)
	UpdateJob(ctx context.Context, id uint, req *dtos.JobUpdateRequest) (*models.Job, error)
	DeleteJob(ctx context.Context, id uint) error
	AddHistory(ctx context.Context, jobID uint, req *dtos.JobEventRequest) (*models.JobEvent, error)
}

type ResearchAPI interface {
	CompanyResearch(ctx context.Context, req *dtos.CompanyResearchRequest) (*client.ResearchResult, error)
}

type JobsManager struct {
	*Collection[models.Job, filter.JobFilter]

	API      JobsAPI
	Research ResearchAPI
	Tasks    *tasks.Runner
	Log      *zap.Logger
}

func NewJobsManager(api JobsAPI, research ResearchAPI, runner *tasks.Runner, log *zap.Logger) *JobsManager {
	meta := store.Meta[models.Job]{
		ID:        func(j models.Job) uint { return j.ID },
		UpdatedAt: func(j models.Job) time.Time { return j.UpdatedAt },
	}
	return &JobsManager{
		Collection: newCollection(meta, filter.Jobs, grouping.JobLevels()),
		API:        api,
		Research:   research,
		Tasks:      runner,
		Log:        log,
	}
}

// SetFilterFromQuery replaces the filter with the one encoded in q.
func (m *JobsManager) SetFilterFromQuery(q url.Values) error {
	f, err := filter.JobFilterFromQuery(q)
	if err != nil {
		return err
	}
	m.SetFilter(f)
	return nil
}

// Refresh re-fetches every job and merges it into the store.
func (m *JobsManager) Refresh(ctx context.Context) error {
	fetchedAt := time.Now()
	var all []models.Job
	for page := 1; ; page++ {
		resp, err := m.API.ListJobs(ctx, filter.JobFilter{}, page, fetchPageLimit)
		if err != nil {
			return fmt.Errorf("list jobs: %w", err)
		}
		all = append(all, resp.Items...)
		if page >= resp.Pagination.TotalPages {
			break
		}
	}
	m.Store.Dispatch(store.Replace[models.Job]{Items: all, FetchedAt: fetchedAt})
	return nil
}

// CreateJob saves a new job, records its first history row, then starts
// company research in the background.
//
// When the history row fails the error wraps ErrSaveFailed and the returned
// job is the one already stored on the server.
func (m *JobsManager) CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error) {
	if err := checkJob(req); err != nil {
		return nil, err
	}

	job, err := m.API.CreateJob(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	m.Store.Dispatch(store.Upsert[models.Job]{Item: *job})

	_, err = m.API.AddHistory(ctx, job.ID, &dtos.JobEventRequest{
		Status:    job.Status,
		EventType: models.EventCreated,
		Details:   "Application created",
	})
	if err != nil {
		return job, fmt.Errorf("%w: history for job %d: %w", ErrSaveFailed, job.ID, err)
	}
	m.View.Back()

	company := req.CompanyName
	m.Tasks.Go("research:"+company, func(ctx context.Context) error {
		_, err := m.Research.CompanyResearch(ctx, &dtos.CompanyResearchRequest{CompanyName: company})
		return err
	})
	return job, nil
}

func (m *JobsManager) UpdateJob(ctx context.Context, id uint, req *dtos.JobUpdateRequest) (*models.Job, error) {
	job, err := m.API.UpdateJob(ctx, id, req)
	if err != nil {
		return nil, err
	}
	m.Store.Dispatch(store.Upsert[models.Job]{Item: *job})
	return job, nil
}

func (m *JobsManager) DeleteJob(ctx context.Context, id uint) error {
	if err := m.API.DeleteJob(ctx, id); err != nil {
		return err
	}
	m.Store.Dispatch(store.Remove[models.Job]{ID: id})
	if sel, ok := m.View.Selected(); ok && sel.ID == id {
		m.View.Back()
	}
	return nil
}

// Open fetches one job with its contacts and history and shows it.
func (m *JobsManager) Open(ctx context.Context, id uint) (*models.Job, error) {
	job, err := m.API.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Store.Dispatch(store.Upsert[models.Job]{Item: *job})
	m.View.Select(*job)
	return job, nil
}

func checkJob(req *dtos.JobCreationRequest) error {
	verr := apperrors.NewValidationError()
	if err := validation.Struct(req); err != nil {
		if !errors.As(err, &verr) {
			return err
		}
	}
	validation.SalaryRange(req.SalaryMin, req.SalaryMax, verr)
	return verr.OrNil()
}
