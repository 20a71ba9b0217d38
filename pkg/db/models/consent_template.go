package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

// ConsentTemplate is a versioned consent-form definition. Content-affecting
// updates bump Version; submissions record the version they were signed
// against.
type ConsentTemplate struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StudioID          uuid.UUID       `gorm:"column:studio_id;type:uuid;not null;index"`
	Name              string          `gorm:"column:name;not null"`
	Description       *string         `gorm:"column:description"`
	HeaderText        *string         `gorm:"column:header_text"`
	FooterText        *string         `gorm:"column:footer_text"`
	Fields            types.FieldList `gorm:"column:fields;type:jsonb;not null"`
	RequiresSignature bool            `gorm:"column:requires_signature;not null;default:false"`
	RequiresPhotoID   bool            `gorm:"column:requires_photo_id;not null;default:false"`
	AgeRequirement    int             `gorm:"column:age_requirement;not null;default:0"`
	IsActive          bool            `gorm:"column:is_active;not null;default:true"`
	IsDefault         bool            `gorm:"column:is_default;not null;default:false"`
	Version           int             `gorm:"column:version;not null;default:1"`
	UseCount          int             `gorm:"column:use_count;not null;default:0"`
	CatalogKey        *string         `gorm:"column:catalog_key"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
