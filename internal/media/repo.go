package media

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
)

// Repository handles media metadata rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to media operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new media row.
func (r *Repository) Create(ctx context.Context, media *models.Media) error {
	if media == nil {
		return fmt.Errorf("media is required")
	}
	return r.db.WithContext(ctx).Create(media).Error
}

// FindByID loads a media row scoped to its studio.
func (r *Repository) FindByID(ctx context.Context, studioID, id uuid.UUID) (*models.Media, error) {
	var media models.Media
	err := r.db.WithContext(ctx).
		Where("id = ? AND studio_id = ?", id, studioID).
		First(&media).Error
	if err != nil {
		return nil, err
	}
	return &media, nil
}

// MarkAttachedWithTx flips a pending row to attached inside the same
// transaction that updates the submission.
func (r *Repository) MarkAttachedWithTx(tx *gorm.DB, id, submissionID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Model(&models.Media{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        enums.MediaStatusAttached,
			"submission_id": submissionID,
		}).Error
}

// ListStalePending returns pending rows older than the cutoff. Their
// uploads were never finalized, so nothing references them.
func (r *Repository) ListStalePending(ctx context.Context, before time.Time) ([]models.Media, error) {
	var rows []models.Media
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.MediaStatusPending, before).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// DeleteWithTx removes one media row inside the caller's transaction.
func (r *Repository) DeleteWithTx(tx *gorm.DB, id uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Where("id = ?", id).Delete(&models.Media{}).Error
}
