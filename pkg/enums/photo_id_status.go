package enums

// PhotoIDStatus is the derived state of the photo-ID lane. It is computed
// from the snapshot's requirement plus the submission's verification fields
// and is never persisted directly.
type PhotoIDStatus string

const (
	PhotoIDStatusNotRequired PhotoIDStatus = "not_required"
	PhotoIDStatusPending     PhotoIDStatus = "pending"
	PhotoIDStatusVerified    PhotoIDStatus = "verified"
)

// String implements fmt.Stringer.
func (p PhotoIDStatus) String() string {
	return string(p)
}
