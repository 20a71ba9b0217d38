package templates

import (
	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

// CatalogEntry is a prebuilt form definition a studio can instantiate as
// its own template. Entries are static; the instantiated template is a
// deep copy owned by the studio.
type CatalogEntry struct {
	Key               string          `json:"key"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	HeaderText        string          `json:"header_text"`
	FooterText        string          `json:"footer_text"`
	Fields            types.FieldList `json:"fields"`
	RequiresSignature bool            `json:"requires_signature"`
	RequiresPhotoID   bool            `json:"requires_photo_id"`
	AgeRequirement    int             `json:"age_requirement"`
}

func strRef(s string) *string { return &s }

var catalog = []CatalogEntry{
	{
		Key:         "tattoo_standard",
		Name:        "Standard Tattoo Consent",
		Description: "General-purpose tattoo consent with health disclosure and aftercare acknowledgement.",
		HeaderText:  "Please read each section carefully before signing.",
		FooterText:  "A copy of this form is retained by the studio for its records.",
		Fields: types.FieldList{
			{ID: "health_heading", Type: enums.FieldTypeHeading, Order: 0, Content: strRef("Health Disclosure")},
			{ID: "allergies", Type: enums.FieldTypeTextarea, Label: "Known allergies", Required: false, Order: 1, Placeholder: strRef("Latex, pigments, antibiotics...")},
			{ID: "medical_conditions", Type: enums.FieldTypeTextarea, Label: "Medical conditions we should know about", Required: false, Order: 2},
			{ID: "blood_thinners", Type: enums.FieldTypeRadio, Label: "Are you currently taking blood thinners?", Required: true, Order: 3, Options: []string{"Yes", "No"}},
			{ID: "risk_paragraph", Type: enums.FieldTypeParagraph, Order: 4, Content: strRef("Tattooing involves breaking the skin and carries inherent risks including infection and allergic reaction.")},
			{ID: "acknowledge_risks", Type: enums.FieldTypeCheckbox, Label: "I understand and accept the risks described above", Required: true, Order: 5},
			{ID: "aftercare", Type: enums.FieldTypeCheckbox, Label: "I have received and understood the aftercare instructions", Required: true, Order: 6},
			{ID: "placement", Type: enums.FieldTypeText, Label: "Tattoo placement", Required: true, Order: 7},
			{ID: "client_signature", Type: enums.FieldTypeSignature, Label: "Client signature", Required: true, Order: 8},
			{ID: "photo_id", Type: enums.FieldTypePhotoID, Label: "Government-issued photo ID", Required: true, Order: 9},
		},
		RequiresSignature: true,
		RequiresPhotoID:   true,
		AgeRequirement:    18,
	},
	{
		Key:         "piercing_standard",
		Name:        "Standard Piercing Consent",
		Description: "Piercing consent covering placement, jewelry material, and healing expectations.",
		HeaderText:  "Please review the risks and aftercare guidance before signing.",
		FooterText:  "Return for a free check-up if you have concerns during healing.",
		Fields: types.FieldList{
			{ID: "placement", Type: enums.FieldTypeSelect, Label: "Piercing placement", Required: true, Order: 0, Options: []string{"Earlobe", "Helix", "Nostril", "Septum", "Navel", "Other"}},
			{ID: "jewelry_material", Type: enums.FieldTypeSelect, Label: "Jewelry material", Required: true, Order: 1, Options: []string{"Titanium", "Surgical steel", "Gold", "Niobium"}},
			{ID: "allergies", Type: enums.FieldTypeTextarea, Label: "Metal or other allergies", Required: false, Order: 2},
			{ID: "healing_paragraph", Type: enums.FieldTypeParagraph, Order: 3, Content: strRef("Healing times vary by placement, from six weeks to a year. Swelling, tenderness, and discharge are normal early on.")},
			{ID: "acknowledge_risks", Type: enums.FieldTypeCheckbox, Label: "I understand the risks and healing expectations", Required: true, Order: 4},
			{ID: "client_signature", Type: enums.FieldTypeSignature, Label: "Client signature", Required: true, Order: 5},
			{ID: "photo_id", Type: enums.FieldTypePhotoID, Label: "Government-issued photo ID", Required: true, Order: 6},
		},
		RequiresSignature: true,
		RequiresPhotoID:   true,
		AgeRequirement:    16,
	},
	{
		Key:         "aftercare_acknowledgement",
		Name:        "Aftercare Acknowledgement",
		Description: "Lightweight follow-up form confirming aftercare instructions were received.",
		HeaderText:  "Confirm you have received your aftercare sheet.",
		Fields: types.FieldList{
			{ID: "procedure_date", Type: enums.FieldTypeDate, Label: "Date of procedure", Required: true, Order: 0},
			{ID: "received_sheet", Type: enums.FieldTypeCheckbox, Label: "I received the printed aftercare instructions", Required: true, Order: 1},
			{ID: "questions", Type: enums.FieldTypeTextarea, Label: "Questions for your artist", Required: false, Order: 2},
		},
		RequiresSignature: false,
		RequiresPhotoID:   false,
		AgeRequirement:    0,
	},
}

// Catalog returns the prebuilt entries available to every studio.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	for i, entry := range catalog {
		out[i] = entry
		out[i].Fields = entry.Fields.Clone()
	}
	return out
}

// CatalogEntryByKey looks up a single prebuilt entry.
func CatalogEntryByKey(key string) (CatalogEntry, bool) {
	for _, entry := range catalog {
		if entry.Key == key {
			entry.Fields = entry.Fields.Clone()
			return entry, true
		}
	}
	return CatalogEntry{}, false
}
