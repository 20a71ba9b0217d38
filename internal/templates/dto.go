package templates

import (
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

// TemplateDTO is the staff-facing transport shape of a consent template.
type TemplateDTO struct {
	ID                uuid.UUID       `json:"id"`
	StudioID          uuid.UUID       `json:"studio_id"`
	Name              string          `json:"name"`
	Description       *string         `json:"description,omitempty"`
	HeaderText        *string         `json:"header_text,omitempty"`
	FooterText        *string         `json:"footer_text,omitempty"`
	Fields            types.FieldList `json:"fields"`
	RequiresSignature bool            `json:"requires_signature"`
	RequiresPhotoID   bool            `json:"requires_photo_id"`
	AgeRequirement    int             `json:"age_requirement"`
	IsActive          bool            `json:"is_active"`
	IsDefault         bool            `json:"is_default"`
	Version           int             `json:"version"`
	UseCount          int             `json:"use_count"`
	CatalogKey        *string         `json:"catalog_key,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// PublicTemplateDTO is what the signing page sees: no use counts, no
// default flags, fields already sorted for display.
type PublicTemplateDTO struct {
	ID                uuid.UUID       `json:"id"`
	StudioID          uuid.UUID       `json:"studio_id"`
	Name              string          `json:"name"`
	Description       *string         `json:"description,omitempty"`
	HeaderText        *string         `json:"header_text,omitempty"`
	FooterText        *string         `json:"footer_text,omitempty"`
	Fields            types.FieldList `json:"fields"`
	RequiresSignature bool            `json:"requires_signature"`
	RequiresPhotoID   bool            `json:"requires_photo_id"`
	AgeRequirement    int             `json:"age_requirement"`
	Version           int             `json:"version"`
}

// FromModel maps the persisted template into a staff DTO.
func FromModel(m *models.ConsentTemplate) *TemplateDTO {
	if m == nil {
		return nil
	}
	return &TemplateDTO{
		ID:                m.ID,
		StudioID:          m.StudioID,
		Name:              m.Name,
		Description:       m.Description,
		HeaderText:        m.HeaderText,
		FooterText:        m.FooterText,
		Fields:            m.Fields.Clone(),
		RequiresSignature: m.RequiresSignature,
		RequiresPhotoID:   m.RequiresPhotoID,
		AgeRequirement:    m.AgeRequirement,
		IsActive:          m.IsActive,
		IsDefault:         m.IsDefault,
		Version:           m.Version,
		UseCount:          m.UseCount,
		CatalogKey:        m.CatalogKey,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// PublicFromModel maps a template into the client-facing shape.
func PublicFromModel(m *models.ConsentTemplate) *PublicTemplateDTO {
	if m == nil {
		return nil
	}
	return &PublicTemplateDTO{
		ID:                m.ID,
		StudioID:          m.StudioID,
		Name:              m.Name,
		Description:       m.Description,
		HeaderText:        m.HeaderText,
		FooterText:        m.FooterText,
		Fields:            m.Fields.Sorted(),
		RequiresSignature: m.RequiresSignature,
		RequiresPhotoID:   m.RequiresPhotoID,
		AgeRequirement:    m.AgeRequirement,
		Version:           m.Version,
	}
}
