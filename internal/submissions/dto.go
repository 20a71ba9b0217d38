package submissions

import (
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/db/models"
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

// SubmissionDTO is the staff-facing transport shape of a submission,
// including the derived photo-ID lane state.
type SubmissionDTO struct {
	ID              uuid.UUID       `json:"id"`
	StudioID        uuid.UUID       `json:"studio_id"`
	TemplateID      uuid.UUID       `json:"template_id"`
	TemplateVersion int             `json:"template_version"`
	FieldsSnapshot  types.FieldList `json:"fields_snapshot"`

	ClientName        string     `json:"client_name"`
	ClientEmail       string     `json:"client_email"`
	ClientPhone       *string    `json:"client_phone,omitempty"`
	ClientDateOfBirth *time.Time `json:"client_date_of_birth,omitempty"`

	Responses types.ResponseMap `json:"responses"`

	HasSignature       bool       `json:"has_signature"`
	SignatureTimestamp *time.Time `json:"signature_timestamp,omitempty"`

	PhotoIDStatus     enums.PhotoIDStatus `json:"photo_id_status"`
	PhotoIDVerified   bool                `json:"photo_id_verified"`
	PhotoIDVerifiedAt *time.Time          `json:"photo_id_verified_at,omitempty"`
	HasPhotoID        bool                `json:"has_photo_id"`

	AgeStatus            enums.AgeStatus `json:"age_status"`
	AgeVerified          bool            `json:"age_verified"`
	AgeAtSigning         *int            `json:"age_at_signing,omitempty"`
	AgeVerifiedAt        *time.Time      `json:"age_verified_at,omitempty"`
	AgeVerificationNotes *string         `json:"age_verification_notes,omitempty"`

	GuardianConsent    *types.GuardianConsent `json:"guardian_consent,omitempty"`
	HasGuardianConsent bool                   `json:"has_guardian_consent"`

	IsVoided     bool       `json:"is_voided"`
	VoidedReason *string    `json:"voided_reason,omitempty"`
	VoidedAt     *time.Time `json:"voided_at,omitempty"`

	IPAddress   *string   `json:"ip_address,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClientSubmissionDTO is the self-service shape returned for an access
// token. It omits staff-side metadata like the signing IP address.
type ClientSubmissionDTO struct {
	ID              uuid.UUID       `json:"id"`
	TemplateVersion int             `json:"template_version"`
	FieldsSnapshot  types.FieldList `json:"fields_snapshot"`

	ClientName  string  `json:"client_name"`
	ClientEmail string  `json:"client_email"`
	ClientPhone *string `json:"client_phone,omitempty"`

	Responses types.ResponseMap `json:"responses"`

	SignatureData      *string    `json:"signature_data,omitempty"`
	SignatureTimestamp *time.Time `json:"signature_timestamp,omitempty"`

	PhotoIDStatus enums.PhotoIDStatus `json:"photo_id_status"`
	AgeStatus     enums.AgeStatus     `json:"age_status"`

	HasGuardianConsent bool `json:"has_guardian_consent"`

	IsVoided    bool      `json:"is_voided"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// photoIDRequired reports whether the submission's frozen template state
// demands a photo ID: either the template-level flag or a required
// photo-ID field, both snapshotted at signing. The snapshot is
// authoritative even if the live template has since changed.
func photoIDRequired(m *models.ConsentSubmission) bool {
	if m.RequiresPhotoID {
		return true
	}
	for _, field := range m.FieldsSnapshot {
		if field.Type == enums.FieldTypePhotoID && field.Required {
			return true
		}
	}
	return false
}

// FromModel maps the persisted submission into the staff DTO.
func FromModel(m *models.ConsentSubmission) *SubmissionDTO {
	if m == nil {
		return nil
	}
	return &SubmissionDTO{
		ID:                   m.ID,
		StudioID:             m.StudioID,
		TemplateID:           m.TemplateID,
		TemplateVersion:      m.TemplateVersion,
		FieldsSnapshot:       m.FieldsSnapshot.Clone(),
		ClientName:           m.ClientName,
		ClientEmail:          m.ClientEmail,
		ClientPhone:          m.ClientPhone,
		ClientDateOfBirth:    m.ClientDateOfBirth,
		Responses:            m.Responses,
		HasSignature:         m.SignatureData != nil,
		SignatureTimestamp:   m.SignatureTimestamp,
		PhotoIDStatus:        m.PhotoIDStatus(photoIDRequired(m)),
		PhotoIDVerified:      m.PhotoIDVerified,
		PhotoIDVerifiedAt:    m.PhotoIDVerifiedAt,
		HasPhotoID:           m.PhotoIDURL != nil,
		AgeStatus:            m.AgeStatus,
		AgeVerified:          m.AgeVerified,
		AgeAtSigning:         m.AgeAtSigning,
		AgeVerifiedAt:        m.AgeVerifiedAt,
		AgeVerificationNotes: m.AgeVerificationNotes,
		GuardianConsent:      m.GuardianConsent,
		HasGuardianConsent:   m.HasGuardianConsent(),
		IsVoided:             m.IsVoided,
		VoidedReason:         m.VoidedReason,
		VoidedAt:             m.VoidedAt,
		IPAddress:            m.IPAddress,
		SubmittedAt:          m.SubmittedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// ClientFromModel maps a submission into the client-portal shape.
func ClientFromModel(m *models.ConsentSubmission) *ClientSubmissionDTO {
	if m == nil {
		return nil
	}
	return &ClientSubmissionDTO{
		ID:                 m.ID,
		TemplateVersion:    m.TemplateVersion,
		FieldsSnapshot:     m.FieldsSnapshot.Clone(),
		ClientName:         m.ClientName,
		ClientEmail:        m.ClientEmail,
		ClientPhone:        m.ClientPhone,
		Responses:          m.Responses,
		SignatureData:      m.SignatureData,
		SignatureTimestamp: m.SignatureTimestamp,
		PhotoIDStatus:      m.PhotoIDStatus(photoIDRequired(m)),
		AgeStatus:          m.AgeStatus,
		HasGuardianConsent: m.HasGuardianConsent(),
		IsVoided:           m.IsVoided,
		SubmittedAt:        m.SubmittedAt,
	}
}
