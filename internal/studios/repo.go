package studios

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
)

// Repository handles studio persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to studio operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a studio by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Studio, error) {
	var studio models.Studio
	if err := r.db.WithContext(ctx).First(&studio, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &studio, nil
}

// FindActiveBySlug resolves the studio behind a public signing URL.
// Inactive studios resolve as not found.
func (r *Repository) FindActiveBySlug(ctx context.Context, slug string) (*models.Studio, error) {
	var studio models.Studio
	err := r.db.WithContext(ctx).
		Where("slug = ? AND is_active = TRUE", strings.ToLower(strings.TrimSpace(slug))).
		First(&studio).Error
	if err != nil {
		return nil, err
	}
	return &studio, nil
}
