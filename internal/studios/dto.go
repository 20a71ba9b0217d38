package studios

import (
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
)

// StudioDTO exposes tenant data in API responses.
type StudioDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModel maps the persisted studio into a DTO.
func FromModel(m *models.Studio) *StudioDTO {
	if m == nil {
		return nil
	}
	return &StudioDTO{
		ID:        m.ID,
		Name:      m.Name,
		Slug:      m.Slug,
		Email:     m.Email,
		Phone:     m.Phone,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
