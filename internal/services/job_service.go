package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/dtos"
	"github.com/justsurfingit/career-tracker/internal/events"
	"github.com/justsurfingit/career-tracker/internal/filter"
	"github.com/justsurfingit/career-tracker/internal/grouping"
	"github.com/justsurfingit/career-tracker/internal/models"
	"github.com/justsurfingit/career-tracker/internal/validation"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type JobService struct {
	Jobs     JobStore
	Contacts ContactStore
	Events   events.Publisher
	Log      *zap.Logger
}

func NewJobService(jobs JobStore, contacts ContactStore, pub events.Publisher, log *zap.Logger) *JobService {
	return &JobService{Jobs: jobs, Contacts: contacts, Events: pub, Log: log}
}

func (s *JobService) CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	// it creates the company if it doesn't exist yet
	company, err := s.Jobs.FindOrCreateCompany(ctx, strings.TrimSpace(req.CompanyName))
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusApplied
	}
	description := req.Description
	if len(req.TechStack) > 0 {
		description = strings.TrimSpace(description + "\n\nTech stack: " + strings.Join(req.TechStack, ", "))
	}

	job := &models.Job{
		CompanyID:   company.ID,
		Company:     *company,
		Title:       strings.TrimSpace(req.Title),
		Location:    req.Location,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		JobLink:     req.JobLink,
		Deadline:    req.Deadline,
		Description: description,
		Industry:    req.Industry,
		JobType:     req.JobType,
		Status:      status,
		Notes:       req.Notes,
		ResumeLink:  req.ResumeLink,
	}
	if err := s.Jobs.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobService) validateCreate(req *dtos.JobCreationRequest) error {
	verr := apperrors.NewValidationError()
	if err := validation.Struct(req); err != nil {
		if v, ok := err.(*apperrors.ValidationError); ok {
			verr = v
		}
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		verr.Add("company_name", "is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		verr.Add("role_title", "is required")
	}
	validation.SalaryRange(req.SalaryMin, req.SalaryMax, verr)
	return verr.OrNil()
}

// GetJob returns the job with its history and linked contacts.
func (s *JobService) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	job, err := s.Jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	contacts, err := s.Contacts.ContactsForJob(ctx, id)
	if err != nil {
		return nil, err
	}
	job.Contacts = contacts
	return job, nil
}

// ListJobs runs the filter pipeline over every job and returns one page.
func (s *JobService) ListJobs(ctx context.Context, f filter.JobFilter, page, limit int) (*dtos.ListResponse[models.Job], error) {
	jobs, err := s.Jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	items, p := Paginate(filter.Jobs(jobs, f), page, limit)
	return &dtos.ListResponse[models.Job]{Items: items, Pagination: p}, nil
}

func (s *JobService) Tree(ctx context.Context, f filter.JobFilter) (*grouping.Tree[models.Job], error) {
	jobs, err := s.Jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	return grouping.Build(filter.Jobs(jobs, f), grouping.JobLevels()), nil
}

// UpdateJob applies a partial update. A status change is also recorded as a
// history row.
func (s *JobService) UpdateJob(ctx context.Context, id uint, req *dtos.JobUpdateRequest) (*models.Job, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	job, err := s.Jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CompanyName != nil && *req.CompanyName != job.Company.Name {
		company, err := s.Jobs.FindOrCreateCompany(ctx, strings.TrimSpace(*req.CompanyName))
		if err != nil {
			return nil, err
		}
		job.CompanyID, job.Company = company.ID, *company
	}
	setString(&job.Title, req.Title)
	setString(&job.JobLink, req.JobLink)
	setString(&job.Description, req.Description)
	setString(&job.Location, req.Location)
	setString(&job.SalaryMin, req.SalaryMin)
	setString(&job.SalaryMax, req.SalaryMax)
	setString(&job.Industry, req.Industry)
	setString(&job.JobType, req.JobType)
	setString(&job.Notes, req.Notes)
	setString(&job.ResumeLink, req.ResumeLink)
	if req.Deadline != nil {
		job.Deadline = req.Deadline
	}

	verr := apperrors.NewValidationError()
	if strings.TrimSpace(job.Title) == "" {
		verr.Add("role_title", "is required")
	}
	validation.SalaryRange(job.SalaryMin, job.SalaryMax, verr)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	previous := job.Status
	if err := s.Jobs.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	if req.Status != nil && *req.Status != previous {
		if _, err := s.AddHistory(ctx, id, &dtos.JobEventRequest{
			Status:    *req.Status,
			EventType: models.EventStatusChange,
			Details:   fmt.Sprintf("Status changed from %s to %s", previous, *req.Status),
		}); err != nil {
			return nil, err
		}
		job.Status = *req.Status
	}
	return job, nil
}

func (s *JobService) DeleteJob(ctx context.Context, id uint) error {
	return s.Jobs.DeleteJob(ctx, id)
}

// AddHistory appends an application-history row. Rows are never edited.
func (s *JobService) AddHistory(ctx context.Context, jobID uint, req *dtos.JobEventRequest) (*models.JobEvent, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	eventType := req.EventType
	if eventType == "" {
		eventType = models.EventStatusChange
	}
	event := &models.JobEvent{
		JobID:     jobID,
		Status:    req.Status,
		EventType: eventType,
		Details:   req.Details,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Jobs.AppendEvent(ctx, event); err != nil {
		return nil, err
	}

	if err := s.Events.Publish(ctx, events.JobStatusChanged, map[string]any{
		"jobId": jobID, "status": event.Status, "eventType": event.EventType,
	}); err != nil {
		s.Log.Warn("publish job status event failed", zap.Uint("job_id", jobID), zap.Error(err))
	}
	return event, nil
}

func (s *JobService) ListHistory(ctx context.Context, jobID uint) ([]models.JobEvent, error) {
	if _, err := s.Jobs.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	return s.Jobs.ListEvents(ctx, jobID)
}

var jobCSVHeader = []string{
	"id", "title", "company", "location", "salary_min", "salary_max", "deadline",
	"industry", "job_type", "status", "job_link", "created_at",
}

// ExportCSV writes the filtered jobs as CSV.
func (s *JobService) ExportCSV(ctx context.Context, f filter.JobFilter, w io.Writer) error {
	jobs, err := s.Jobs.ListJobs(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(jobCSVHeader); err != nil {
		return err
	}
	for _, j := range filter.Jobs(jobs, f) {
		deadline := ""
		if j.Deadline != nil {
			deadline = j.Deadline.Format("2006-01-02")
		}
		row := []string{
			strconv.FormatUint(uint64(j.ID), 10), j.Title, j.CompanyName(), j.Location,
			j.SalaryMin, j.SalaryMax, deadline, j.Industry, j.JobType, j.Status, j.JobLink,
			j.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Paginate slices one page out of items. Page is 1-based; limit is clamped.
func Paginate[T any](items []T, page, limit int) ([]T, dtos.Pagination) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page <= 0 {
		page = 1
	}
	total := len(items)
	p := dtos.Pagination{
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
		Page:       page,
		Limit:      limit,
	}
	start := (page - 1) * limit
	if start >= total {
		return []T{}, p
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], p
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
