package submissions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/pagination"
)

// ErrVersionConflict is returned when a compare-and-swap update finds the
// row was modified since it was read.
var ErrVersionConflict = fmt.Errorf("submission was modified concurrently")

// Repository handles consent-submission persistence. Submissions are never
// deleted; voiding is the only terminal operation.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to submission operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithTx inserts a submission inside an existing transaction so the
// row and its first audit entry commit together.
func (r *Repository) CreateWithTx(tx *gorm.DB, submission *models.ConsentSubmission) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if submission == nil {
		return fmt.Errorf("submission is required")
	}
	return tx.Create(submission).Error
}

// FindByID loads a submission scoped to its studio.
func (r *Repository) FindByID(ctx context.Context, studioID, id uuid.UUID) (*models.ConsentSubmission, error) {
	var submission models.ConsentSubmission
	err := r.db.WithContext(ctx).
		Where("id = ? AND studio_id = ?", id, studioID).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// FindByAccessToken loads a submission by the client's opaque credential.
func (r *Repository) FindByAccessToken(ctx context.Context, token string) (*models.ConsentSubmission, error) {
	var submission models.ConsentSubmission
	err := r.db.WithContext(ctx).
		Where("access_token = ?", token).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListByStudio returns a page of submissions ordered newest first. The
// cursor pins the page boundary on (submitted_at, id).
func (r *Repository) ListByStudio(ctx context.Context, studioID uuid.UUID, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.ConsentSubmission, error) {
	query := r.db.WithContext(ctx).
		Where("studio_id = ?", studioID).
		Order("submitted_at DESC, id DESC").
		Limit(limit)

	if filter.TemplateID != nil {
		query = query.Where("template_id = ?", *filter.TemplateID)
	}
	if filter.Voided != nil {
		query = query.Where("is_voided = ?", *filter.Voided)
	}

	if cursor != nil {
		query = query.Where(
			"(submitted_at < ?) OR (submitted_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var list []models.ConsentSubmission
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateWithCAS writes the submission's mutable fields guarded by its lock
// version. A concurrent writer bumps the version first and this call then
// affects zero rows, surfacing ErrVersionConflict so the caller can reload.
func (r *Repository) UpdateWithCAS(tx *gorm.DB, submission *models.ConsentSubmission) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if submission == nil {
		return fmt.Errorf("submission is required")
	}

	currentVersion := submission.LockVersion
	submission.LockVersion++

	result := tx.Model(&models.ConsentSubmission{}).
		Where("id = ? AND lock_version = ?", submission.ID, currentVersion).
		Updates(map[string]any{
			"photo_id_url":           submission.PhotoIDURL,
			"photo_id_verified":      submission.PhotoIDVerified,
			"photo_id_verified_at":   submission.PhotoIDVerifiedAt,
			"photo_id_verified_by":   submission.PhotoIDVerifiedBy,
			"age_status":             submission.AgeStatus,
			"age_verified":           submission.AgeVerified,
			"age_verified_at":        submission.AgeVerifiedAt,
			"age_verification_notes": submission.AgeVerificationNotes,
			"guardian_consent":       submission.GuardianConsent,
			"is_voided":              submission.IsVoided,
			"voided_reason":          submission.VoidedReason,
			"voided_at":              submission.VoidedAt,
			"voided_by":              submission.VoidedBy,
			"lock_version":           submission.LockVersion,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}
