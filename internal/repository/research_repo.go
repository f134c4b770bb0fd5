package repository

import (
	"context"
	"fmt"

	"github.com/justsurfingit/career-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResearchRepo struct {
	DB *gorm.DB
}

func NewResearchRepo(db *gorm.DB) *ResearchRepo {
	return &ResearchRepo{DB: db}
}

func (r *ResearchRepo) GetResearch(ctx context.Context, companyID uint) (*models.CompanyResearch, error) {
	var res models.CompanyResearch
	if err := r.DB.WithContext(ctx).Where("company_id = ?", companyID).First(&res).Error; err != nil {
		return nil, notFound(err, "company research", companyID)
	}
	return &res, nil
}

// SaveResearch upserts the single snapshot kept per company.
func (r *ResearchRepo) SaveResearch(ctx context.Context, res *models.CompanyResearch) error {
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company_id"}},
		UpdateAll: true,
	}).Create(res).Error
	if err != nil {
		return fmt.Errorf("save research for company %d: %w", res.CompanyID, err)
	}
	return nil
}

func (r *ResearchRepo) SetFollowing(ctx context.Context, id uint, following bool) (*models.CompanyResearch, error) {
	var res models.CompanyResearch
	if err := r.DB.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, notFound(err, "company research", id)
	}
	if err := r.DB.WithContext(ctx).Model(&res).Update("following", following).Error; err != nil {
		return nil, fmt.Errorf("update following: %w", err)
	}
	return &res, nil
}
