// Package repository is the gorm-backed persistence layer.
package repository

import (
	"errors"
	"fmt"

	"github.com/justsurfingit/career-tracker/internal/apperrors"
	"gorm.io/gorm"
)

// notFound maps gorm's missing-row error onto the app taxonomy.
func notFound(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity, id)
	}
	return fmt.Errorf("load %s %v: %w", entity, id, err)
}
