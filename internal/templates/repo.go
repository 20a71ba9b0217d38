package templates

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
)

// Repository handles consent-template persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to template operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new template row.
func (r *Repository) Create(ctx context.Context, template *models.ConsentTemplate) error {
	if template == nil {
		return fmt.Errorf("template is required")
	}
	return r.db.WithContext(ctx).Create(template).Error
}

// FindByID loads a template scoped to its studio.
func (r *Repository) FindByID(ctx context.Context, studioID, id uuid.UUID) (*models.ConsentTemplate, error) {
	var template models.ConsentTemplate
	err := r.db.WithContext(ctx).
		Where("id = ? AND studio_id = ?", id, studioID).
		First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// FindActiveByID loads a template only if it is active. Public signing
// treats inactive templates as absent.
func (r *Repository) FindActiveByID(ctx context.Context, studioID, id uuid.UUID) (*models.ConsentTemplate, error) {
	var template models.ConsentTemplate
	err := r.db.WithContext(ctx).
		Where("id = ? AND studio_id = ? AND is_active = TRUE", id, studioID).
		First(&template).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// ListByStudio returns all templates for the studio, newest first.
func (r *Repository) ListByStudio(ctx context.Context, studioID uuid.UUID) ([]models.ConsentTemplate, error) {
	var list []models.ConsentTemplate
	err := r.db.WithContext(ctx).
		Where("studio_id = ?", studioID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Update saves the provided template.
func (r *Repository) Update(ctx context.Context, template *models.ConsentTemplate) error {
	if template == nil {
		return fmt.Errorf("template is required")
	}
	return r.db.WithContext(ctx).Save(template).Error
}

// Delete removes a template row. Callers must first establish that no
// submissions reference it.
func (r *Repository) Delete(ctx context.Context, studioID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND studio_id = ?", id, studioID).
		Delete(&models.ConsentTemplate{}).Error
}

// ClearDefault unsets the default flag on every other template in the
// studio, keeping the at-most-one-default invariant.
func (r *Repository) ClearDefault(ctx context.Context, studioID, exceptID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ConsentTemplate{}).
		Where("studio_id = ? AND id <> ? AND is_default = TRUE", studioID, exceptID).
		UpdateColumn("is_default", false).Error
}

// CountSubmissions reports how many submissions reference the template.
func (r *Repository) CountSubmissions(ctx context.Context, templateID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ConsentSubmission{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	return count, err
}

// IncrementUseCount bumps the advisory signing counter. Lost updates
// under concurrency are acceptable; the count is not safety-critical.
func (r *Repository) IncrementUseCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ConsentTemplate{}).
		Where("id = ?", id).
		UpdateColumn("use_count", gorm.Expr("use_count + 1")).Error
}
