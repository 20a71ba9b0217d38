package enums

import "fmt"

// MediaKind defines where an uploaded object is used.
type MediaKind string

const (
	MediaKindPhotoID MediaKind = "photo_id"
	MediaKindOther   MediaKind = "other"
)

var validMediaKinds = []MediaKind{
	MediaKindPhotoID,
	MediaKindOther,
}

// String returns the literal string for the kind.
func (m MediaKind) String() string {
	return string(m)
}

// IsValid reports whether the kind is known.
func (m MediaKind) IsValid() bool {
	for _, candidate := range validMediaKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaKind converts raw input into a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	for _, candidate := range validMediaKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media kind %q", value)
}

// MediaStatus tracks the upload lifecycle of a media row.
type MediaStatus string

const (
	MediaStatusPending  MediaStatus = "pending"
	MediaStatusAttached MediaStatus = "attached"
)

var validMediaStatuses = []MediaStatus{
	MediaStatusPending,
	MediaStatusAttached,
}

// String returns the literal string for the status.
func (m MediaStatus) String() string {
	return string(m)
}

// IsValid reports whether the status is known.
func (m MediaStatus) IsValid() bool {
	for _, candidate := range validMediaStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}
