package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
)

// Notification stores in-app notification payloads scoped to studios.
type Notification struct {
	ID           uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StudioID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	SubmissionID *uuid.UUID             `gorm:"type:uuid"`
	Type         enums.NotificationType `gorm:"type:text;not null"`
	Title        string                 `gorm:"type:text;not null"`
	Message      string                 `gorm:"type:text;not null"`
	ReadAt       *time.Time             `gorm:"type:timestamptz"`
	CreatedAt    time.Time              `gorm:"type:timestamptz;default:now()"`
}
