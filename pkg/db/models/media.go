package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
)

// Media captures metadata for uploaded objects, currently only photo-ID
// images attached to submissions.
type Media struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StudioID     uuid.UUID         `gorm:"column:studio_id;type:uuid;not null;index"`
	SubmissionID *uuid.UUID        `gorm:"column:submission_id;type:uuid;index"`
	Kind         enums.MediaKind   `gorm:"column:kind;type:text;not null"`
	Status       enums.MediaStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	URL          *string           `gorm:"column:url"`
	GCSKey       string            `gorm:"column:gcs_key;not null;unique"`
	FileName     string            `gorm:"column:file_name;not null"`
	MimeType     string            `gorm:"column:mime_type;not null"`
	SizeBytes    int64             `gorm:"column:size_bytes;not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
}
