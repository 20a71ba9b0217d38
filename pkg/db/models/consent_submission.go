package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

// ConsentSubmission is one client's signed instance of a template. The
// fields snapshot is a self-contained copy taken at signing time; nothing
// re-reads the live template when rendering or re-validating a submission.
// Only verification and void fields mutate after creation, all guarded by
// LockVersion compare-and-swap.
type ConsentSubmission struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StudioID        uuid.UUID       `gorm:"column:studio_id;type:uuid;not null;index"`
	TemplateID      uuid.UUID       `gorm:"column:template_id;type:uuid;not null;index"`
	TemplateVersion int             `gorm:"column:template_version;not null"`
	FieldsSnapshot  types.FieldList `gorm:"column:fields_snapshot;type:jsonb;not null"`

	// Template-level requirement flags, frozen at signing time alongside
	// the field list.
	RequiresSignature bool `gorm:"column:requires_signature;not null;default:false"`
	RequiresPhotoID   bool `gorm:"column:requires_photo_id;not null;default:false"`

	ClientName        string     `gorm:"column:client_name;not null"`
	ClientEmail       string     `gorm:"column:client_email;not null"`
	ClientPhone       *string    `gorm:"column:client_phone"`
	ClientDateOfBirth *time.Time `gorm:"column:client_date_of_birth"`

	Responses types.ResponseMap `gorm:"column:responses;type:jsonb;not null"`

	SignatureData      *string    `gorm:"column:signature_data"`
	SignatureTimestamp *time.Time `gorm:"column:signature_timestamp"`

	PhotoIDURL        *string    `gorm:"column:photo_id_url"`
	PhotoIDVerified   bool       `gorm:"column:photo_id_verified;not null;default:false"`
	PhotoIDVerifiedAt *time.Time `gorm:"column:photo_id_verified_at"`
	PhotoIDVerifiedBy *uuid.UUID `gorm:"column:photo_id_verified_by;type:uuid"`

	AgeStatus            enums.AgeStatus `gorm:"column:age_status;type:text;not null;default:'not_applicable'"`
	AgeVerified          bool            `gorm:"column:age_verified;not null;default:false"`
	AgeAtSigning         *int            `gorm:"column:age_at_signing"`
	AgeVerifiedAt        *time.Time      `gorm:"column:age_verified_at"`
	AgeVerificationNotes *string         `gorm:"column:age_verification_notes"`

	GuardianConsent *types.GuardianConsent `gorm:"column:guardian_consent;type:jsonb"`

	IsVoided     bool       `gorm:"column:is_voided;not null;default:false"`
	VoidedReason *string    `gorm:"column:voided_reason"`
	VoidedAt     *time.Time `gorm:"column:voided_at"`
	VoidedBy     *uuid.UUID `gorm:"column:voided_by;type:uuid"`

	AccessToken string  `gorm:"column:access_token;not null;uniqueIndex:idx_consent_submissions_access_token"`
	IPAddress   *string `gorm:"column:ip_address"`

	LockVersion int       `gorm:"column:lock_version;not null;default:0"`
	SubmittedAt time.Time `gorm:"column:submitted_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasGuardianConsent reports whether the guardian record has been attached.
func (s ConsentSubmission) HasGuardianConsent() bool {
	return s.GuardianConsent != nil
}

// PhotoIDStatus derives the photo-ID lane state from the snapshot
// requirement and the verification fields.
func (s ConsentSubmission) PhotoIDStatus(required bool) enums.PhotoIDStatus {
	switch {
	case s.PhotoIDVerified:
		return enums.PhotoIDStatusVerified
	case required || s.PhotoIDURL != nil:
		return enums.PhotoIDStatusPending
	default:
		return enums.PhotoIDStatusNotRequired
	}
}
