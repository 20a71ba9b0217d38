package enums

import "fmt"

// AgeStatus tracks the age-verification lane of a submission.
type AgeStatus string

const (
	AgeStatusNotApplicable           AgeStatus = "not_applicable"
	AgeStatusPending                 AgeStatus = "pending"
	AgeStatusVerified                AgeStatus = "verified"
	AgeStatusUnderagePendingGuardian AgeStatus = "underage_pending_guardian"
)

var validAgeStatuses = []AgeStatus{
	AgeStatusNotApplicable,
	AgeStatusPending,
	AgeStatusVerified,
	AgeStatusUnderagePendingGuardian,
}

// String implements fmt.Stringer.
func (a AgeStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AgeStatus.
func (a AgeStatus) IsValid() bool {
	for _, candidate := range validAgeStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAgeStatus converts raw input into an AgeStatus.
func ParseAgeStatus(value string) (AgeStatus, error) {
	for _, candidate := range validAgeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid age status %q", value)
}
