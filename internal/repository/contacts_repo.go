package repository

import (
	"context"
	"fmt"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"github.com/justsurfingit/career-tracker/internal/models"
	"gorm.io/gorm"
)

type ContactRepo struct {
	DB *gorm.DB
}

func NewContactRepo(db *gorm.DB) *ContactRepo {
	return &ContactRepo{DB: db}
}

func (r *ContactRepo) CreateContact(ctx context.Context, c *models.Contact) error {
	if err := r.DB.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (r *ContactRepo) GetContact(ctx context.Context, id uint) (*models.Contact, error) {
	var c models.Contact
	err := r.DB.WithContext(ctx).
		Preload("Interactions", func(db *gorm.DB) *gorm.DB { return db.Order("date DESC, id DESC") }).
		First(&c, id).Error
	if err != nil {
		return nil, notFound(err, "contact", id)
	}
	return &c, nil
}

func (r *ContactRepo) ListContacts(ctx context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// ContactsForJob finds contacts whose linked_job_ids array contains jobID.
func (r *ContactRepo) ContactsForJob(ctx context.Context, jobID uint) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.DB.WithContext(ctx).
		Where("linked_job_ids @> ?::jsonb", fmt.Sprintf("[%d]", jobID)).
		Order("id ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("contacts for job %d: %w", jobID, err)
	}
	return contacts, nil
}

// SaveContact writes the whole record, including the linked job id list.
func (r *ContactRepo) SaveContact(ctx context.Context, c *models.Contact) error {
	if err := r.DB.WithContext(ctx).Omit("Interactions").Save(c).Error; err != nil {
		return fmt.Errorf("save contact %d: %w", c.ID, err)
	}
	return nil
}

func (r *ContactRepo) DeleteContact(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Contact{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete contact %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("contact", id)
	}
	return nil
}

// AddInteraction stores the interaction and moves the contact's strength by
// its delta in one transaction. The delta is applied in SQL so concurrent
// interactions do not overwrite each other.
func (r *ContactRepo) AddInteraction(ctx context.Context, in *models.Interaction) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Contact{}).Where("id = ?", in.ContactID).
			Update("relationship_strength", gorm.Expr(
				"LEAST(?, GREATEST(?, relationship_strength + ?))",
				models.MaxStrength, models.MinStrength, in.RelationshipChange))
		if res.Error != nil {
			return fmt.Errorf("update strength: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("contact", in.ContactID)
		}
		if err := tx.Create(in).Error; err != nil {
			return fmt.Errorf("create interaction: %w", err)
		}
		return nil
	})
}

func (r *ContactRepo) ListInteractions(ctx context.Context, contactID uint) ([]models.Interaction, error) {
	var out []models.Interaction
	err := r.DB.WithContext(ctx).Where("contact_id = ?", contactID).Order("date DESC, id DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list interactions for contact %d: %w", contactID, err)
	}
	return out, nil
}
