package repository

import (
	"context"
	"fmt"

	"github.com/justsurfingit/career-tracker/internal/models"
	"gorm.io/gorm"
)

// EmailStateRepo stores the Gmail sync bookmark and the dedup table.
type EmailStateRepo struct {
	DB *gorm.DB
}

func NewEmailStateRepo(db *gorm.DB) *EmailStateRepo {
	return &EmailStateRepo{DB: db}
}

// DefaultUser returns the single mailbox owner, creating it on first run.
func (r *EmailStateRepo) DefaultUser(ctx context.Context) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where(models.User{Email: "default"}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("default user: %w", err)
	}
	return &user, nil
}

func (r *EmailStateRepo) UpdateHistoryID(ctx context.Context, userID uint, historyID uint64) error {
	err := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("last_history_id", historyID).Error
	if err != nil {
		return fmt.Errorf("update history id: %w", err)
	}
	return nil
}

func (r *EmailStateRepo) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.ProcessedEmail{}).Where("id = ?", messageID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check processed email: %w", err)
	}
	return count > 0, nil
}

func (r *EmailStateRepo) MarkProcessed(ctx context.Context, messageID string) error {
	if err := r.DB.WithContext(ctx).Create(&models.ProcessedEmail{ID: messageID}).Error; err != nil {
		return fmt.Errorf("mark email processed: %w", err)
	}
	return nil
}
