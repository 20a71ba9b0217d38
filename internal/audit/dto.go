package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
)

// EntryDTO is the transport shape of one audit entry.
type EntryDTO struct {
	ID              uuid.UUID         `json:"id"`
	SubmissionID    uuid.UUID         `json:"submission_id"`
	Action          enums.AuditAction `json:"action"`
	PerformedByName *string           `json:"performed_by_name,omitempty"`
	IsClientAccess  bool              `json:"is_client_access"`
	Notes           *string           `json:"notes,omitempty"`
	IPAddress       *string           `json:"ip_address,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// FromModel maps a persisted entry into a DTO.
func FromModel(m *models.ConsentAuditLog) *EntryDTO {
	if m == nil {
		return nil
	}
	return &EntryDTO{
		ID:              m.ID,
		SubmissionID:    m.SubmissionID,
		Action:          m.Action,
		PerformedByName: m.PerformedByName,
		IsClientAccess:  m.IsClientAccess,
		Notes:           m.Notes,
		IPAddress:       m.IPAddress,
		CreatedAt:       m.CreatedAt,
	}
}
