package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"yard-tracker/internal/interfaces"
	"yard-tracker/internal/models"
)

type AnchorRepository struct {
	db *gorm.DB
}

func NewAnchorRepository(db *gorm.DB) *AnchorRepository {
	return &AnchorRepository{db: db}
}

// FindAll returns the registry ordered by anchor id, which fixes the
// estimator's reference anchor.
func (r *AnchorRepository) FindAll(ctx context.Context) ([]*models.Anchor, error) {
	var anchors []*models.Anchor
	err := r.db.WithContext(ctx).Order("anchor_id ASC").Find(&anchors).Error
	return anchors, err
}

func (r *AnchorRepository) CreateOrUpdate(ctx context.Context, anchor *models.Anchor) error {
	if err := anchor.Validate(); err != nil {
		return fmt.Errorf("invalid anchor: %w", err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Anchor
		result := tx.Where("anchor_id = ?", anchor.AnchorID).First(&existing)

		if result.Error == nil {
			updateMap := map[string]interface{}{
				"name":             anchor.Name,
				"x":                anchor.X,
				"y":                anchor.Y,
				"reference_signal": anchor.ReferenceSignal,
			}

			return tx.Model(&models.Anchor{}).
				Where("anchor_id = ?", anchor.AnchorID).
				Updates(updateMap).Error

		} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return tx.Create(anchor).Error

		} else {
			return result.Error
		}
	})
}

var _ interfaces.IAnchorRepository = (*AnchorRepository)(nil)
