package enums

import "fmt"

// AuditAction labels an entry in a submission's audit trail.
type AuditAction string

const (
	AuditActionCreated              AuditAction = "created"
	AuditActionViewed               AuditAction = "viewed"
	AuditActionVerified             AuditAction = "verified"
	AuditActionAgeVerified          AuditAction = "age_verified"
	AuditActionGuardianConsentAdded AuditAction = "guardian_consent_added"
	AuditActionVoided               AuditAction = "voided"
	AuditActionDownloaded           AuditAction = "downloaded"
	AuditActionPhotoIDAttached      AuditAction = "photo_id_attached"
)

var validAuditActions = []AuditAction{
	AuditActionCreated,
	AuditActionViewed,
	AuditActionVerified,
	AuditActionAgeVerified,
	AuditActionGuardianConsentAdded,
	AuditActionVoided,
	AuditActionDownloaded,
	AuditActionPhotoIDAttached,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
