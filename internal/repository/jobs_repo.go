package repository

import (
	"context"
	"fmt"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/models"
	"gorm.io/gorm"
)

type JobRepo struct {
	DB *gorm.DB
}

func NewJobRepo(db *gorm.DB) *JobRepo {
	return &JobRepo{DB: db}
}

// FindOrCreateCompany creates the company row if no company of that name,
// ignoring case, exists yet.
func (r *JobRepo) FindOrCreateCompany(ctx context.Context, name string) (*models.Company, error) {
	var company models.Company
	err := r.DB.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		Attrs(models.Company{Name: name}).
		FirstOrCreate(&company).Error
	if err != nil {
		return nil, fmt.Errorf("find or create company %q: %w", name, err)
	}
	return &company, nil
}

func (r *JobRepo) FindCompanyByName(ctx context.Context, name string) (*models.Company, error) {
	var company models.Company
	err := r.DB.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&company).Error
	if err != nil {
		return nil, notFound(err, "company", name)
	}
	return &company, nil
}

func (r *JobRepo) ListCompanies(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := r.DB.WithContext(ctx).Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

func (r *JobRepo) CreateJob(ctx context.Context, job *models.Job) error {
	if err := r.DB.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (r *JobRepo) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := r.DB.WithContext(ctx).
		Preload("Company").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&job, id).Error
	if err != nil {
		return nil, notFound(err, "job", id)
	}
	return &job, nil
}

// ListJobs returns every job in insertion order; ordering for display is the
// filter pipeline's job.
func (r *JobRepo) ListJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.DB.WithContext(ctx).Preload("Company").Order("id ASC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// ActiveJobsForCompany ignores jobs in a terminal state.
func (r *JobRepo) ActiveJobsForCompany(ctx context.Context, companyID uint) ([]models.Job, error) {
	var jobs []models.Job
	err := r.DB.WithContext(ctx).
		Where("company_id = ? AND status NOT IN ?", companyID,
			[]string{models.StatusRejected, models.StatusOffer, models.StatusWithdrawn}).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("active jobs for company %d: %w", companyID, err)
	}
	return jobs, nil
}

func (r *JobRepo) SaveJob(ctx context.Context, job *models.Job) error {
	if err := r.DB.WithContext(ctx).Omit("Company", "History").Save(job).Error; err != nil {
		return fmt.Errorf("save job %d: %w", job.ID, err)
	}
	return nil
}

func (r *JobRepo) DeleteJob(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Job{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete job %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("job", id)
	}
	return nil
}

// AppendEvent adds a history row and moves the job's status with it.
func (r *JobRepo) AppendEvent(ctx context.Context, event *models.JobEvent) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.Select("id", "status").First(&job, event.JobID).Error; err != nil {
			return notFound(err, "job", event.JobID)
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("create job event: %w", err)
		}
		if event.Status != "" && event.Status != job.Status {
			if err := tx.Model(&job).Update("status", event.Status).Error; err != nil {
				return fmt.Errorf("update job status: %w", err)
			}
		}
		return nil
	})
}

func (r *JobRepo) ListEvents(ctx context.Context, jobID uint) ([]models.JobEvent, error) {
	var events []models.JobEvent
	err := r.DB.WithContext(ctx).Where("job_id = ?", jobID).Order("created_at ASC, id ASC").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list events for job %d: %w", jobID, err)
	}
	return events, nil
}
