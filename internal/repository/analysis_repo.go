package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/justsurfingit/career-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalysisRepo struct {
	DB *gorm.DB
}

func NewAnalysisRepo(db *gorm.DB) *AnalysisRepo {
	return &AnalysisRepo{DB: db}
}

func (r *AnalysisRepo) LatestAnalysis(ctx context.Context, jobID uint, kind string) (*models.Analysis, error) {
	var a models.Analysis
	err := r.DB.WithContext(ctx).
		Where("job_id = ? AND kind = ?", jobID, kind).
		Order("version DESC").
		First(&a).Error
	if err != nil {
		return nil, notFound(err, kind+" analysis for job", jobID)
	}
	return &a, nil
}

func (r *AnalysisRepo) AnalysisHistory(ctx context.Context, jobID uint, kind string, limit int) ([]models.Analysis, error) {
	var out []models.Analysis
	err := r.DB.WithContext(ctx).
		Where("job_id = ? AND kind = ?", jobID, kind).
		Order("version DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%s history for job %d: %w", kind, jobID, err)
	}
	return out, nil
}

// CreateAnalysis assigns the next version for (job, kind) and inserts it.
// The job row stays locked until commit so concurrent writers for the same
// job take turns reading MAX(version).
func (r *AnalysisRepo) CreateAnalysis(ctx context.Context, a *models.Analysis) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&job, a.JobID).Error
		if err != nil {
			return notFound(err, "job", a.JobID)
		}
		var current int
		err = tx.Model(&models.Analysis{}).
			Where("job_id = ? AND kind = ?", a.JobID, a.Kind).
			Select("COALESCE(MAX(version), 0)").
			Scan(&current).Error
		if err != nil {
			return fmt.Errorf("next analysis version: %w", err)
		}
		a.Version = current + 1
		if err := tx.Create(a).Error; err != nil {
			return fmt.Errorf("create analysis: %w", err)
		}
		return nil
	})
}

// StaleJobIDs lists active jobs whose latest analysis of kind is older than
// cutoff.
func (r *AnalysisRepo) StaleJobIDs(ctx context.Context, kind string, cutoff time.Time) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&models.Analysis{}).
		Joins("JOIN jobs ON jobs.id = analyses.job_id AND jobs.deleted_at IS NULL").
		Where("analyses.kind = ? AND jobs.status NOT IN ?", kind,
			[]string{models.StatusRejected, models.StatusWithdrawn}).
		Group("analyses.job_id").
		Having("MAX(analyses.created_at) < ?", cutoff).
		Pluck("analyses.job_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("stale %s analyses: %w", kind, err)
	}
	return ids, nil
}
