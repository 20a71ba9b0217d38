package enums

import "fmt"

// FieldType identifies the variant of a consent-form field.
type FieldType string

const (
	FieldTypeHeading   FieldType = "heading"
	FieldTypeParagraph FieldType = "paragraph"
	FieldTypeText      FieldType = "text"
	FieldTypeTextarea  FieldType = "textarea"
	FieldTypeCheckbox  FieldType = "checkbox"
	FieldTypeRadio     FieldType = "radio"
	FieldTypeSelect    FieldType = "select"
	FieldTypeDate      FieldType = "date"
	FieldTypeSignature FieldType = "signature"
	FieldTypePhotoID   FieldType = "photo_id"
)

var validFieldTypes = []FieldType{
	FieldTypeHeading,
	FieldTypeParagraph,
	FieldTypeText,
	FieldTypeTextarea,
	FieldTypeCheckbox,
	FieldTypeRadio,
	FieldTypeSelect,
	FieldTypeDate,
	FieldTypeSignature,
	FieldTypePhotoID,
}

// String implements fmt.Stringer.
func (f FieldType) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FieldType.
func (f FieldType) IsValid() bool {
	for _, candidate := range validFieldTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// IsStatic reports whether the field is display-only and never collects a response.
func (f FieldType) IsStatic() bool {
	return f == FieldTypeHeading || f == FieldTypeParagraph
}

// HasOptions reports whether the field type carries a fixed option list.
func (f FieldType) HasOptions() bool {
	return f == FieldTypeRadio || f == FieldTypeSelect
}

// IsSideChannel reports whether the field is satisfied by submission-level
// state (signature capture, photo-ID upload) rather than a keyed response.
func (f FieldType) IsSideChannel() bool {
	return f == FieldTypeSignature || f == FieldTypePhotoID
}

// ParseFieldType converts raw input into a FieldType.
func ParseFieldType(value string) (FieldType, error) {
	for _, candidate := range validFieldTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid field type %q", value)
}
