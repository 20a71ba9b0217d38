package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
)

// ConsentAuditLog is an append-only entry recording one action against a
// submission. A null PerformedByName means the actor was the client or the
// system. Rows are never updated or deleted.
type ConsentAuditLog struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SubmissionID    uuid.UUID         `gorm:"column:submission_id;type:uuid;not null;index"`
	Action          enums.AuditAction `gorm:"column:action;type:text;not null"`
	PerformedBy     *uuid.UUID        `gorm:"column:performed_by;type:uuid"`
	PerformedByName *string           `gorm:"column:performed_by_name"`
	IsClientAccess  bool              `gorm:"column:is_client_access;not null;default:false"`
	Notes           *string           `gorm:"column:notes"`
	IPAddress       *string           `gorm:"column:ip_address"`
	Seq             int64             `gorm:"column:seq;autoIncrement;uniqueIndex"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
}
