package fields

import (
	"strings"
	"time"

	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

// Reserved error keys for submission-level inputs that are not template
// fields.
const (
	KeyClientName  = "clientName"
	KeyClientEmail = "clientEmail"
	KeyDateOfBirth = "dateOfBirth"
	KeySignature   = "signature"
)

// Errors maps a field id (or reserved key) to a human-readable message.
// An empty map means the input is valid.
type Errors map[string]string

// Input carries everything the engine needs to judge a signing attempt.
// Signature capture travels beside the keyed responses because signature
// fields are satisfied by submission-level state, not a response value.
type Input struct {
	ClientName   string
	ClientEmail  string
	DateOfBirth  *time.Time
	Responses    map[string]any
	HasSignature bool
	SignedAt     time.Time
}

// Requirements carries the template-level constraints that sit above the
// field list. A template can demand a signature without declaring a
// signature field; photo ID is always deferred past signing, so it has no
// entry here.
type Requirements struct {
	AgeRequirement int
	Signature      bool
}

// Validate checks a signing attempt against the template's field list and
// its template-level requirements. It is pure: no persistence, no mutation
// of the input.
func Validate(list types.FieldList, req Requirements, in Input) Errors {
	errs := Errors{}

	if strings.TrimSpace(in.ClientName) == "" {
		errs[KeyClientName] = "Name is required"
	}
	if !validEmail(in.ClientEmail) {
		errs[KeyClientEmail] = "A valid email is required"
	}

	if req.Signature && !in.HasSignature {
		errs[KeySignature] = "Signature is required"
	}

	// An age requirement makes DOB mandatory. An underage signer is NOT
	// rejected here: the signing workflow accepts the submission and
	// routes it to the guardian-consent lane.
	if req.AgeRequirement > 0 && in.DateOfBirth == nil {
		errs[KeyDateOfBirth] = "Date of birth is required"
	}

	for _, field := range list.Sorted() {
		if msg, ok := validateField(field, in); !ok {
			errs[field.ID] = msg
		}
	}

	return errs
}

func validateField(field types.FormField, in Input) (string, bool) {
	if field.Type.IsStatic() {
		return "", true
	}

	switch field.Type {
	case enums.FieldTypeSignature:
		if field.Required && !in.HasSignature {
			return "Signature is required", false
		}
		return "", true
	case enums.FieldTypePhotoID:
		// Deferred: photo ID is checked after submission, never at signing.
		return "", true
	}

	value, present := in.Responses[field.ID]

	switch field.Type {
	case enums.FieldTypeCheckbox:
		if field.Required && !truthy(value) {
			return label(field) + " must be checked", false
		}
	case enums.FieldTypeRadio, enums.FieldTypeSelect:
		if field.Required && blank(value) {
			return label(field) + " is required", false
		}
		if present && !blank(value) && !inOptions(field.Options, value) {
			return label(field) + " has an invalid selection", false
		}
	default:
		if field.Required && blank(value) {
			return label(field) + " is required", false
		}
	}

	return "", true
}

func label(field types.FormField) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return "This field"
}

func blank(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "on" || v == "1"
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

func inOptions(options []string, value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, opt := range options {
		if opt == s {
			return true
		}
	}
	return false
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t")
}
