package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
)

// FormField is one element of a consent-form template. Only the attributes
// valid for the field's type are populated; the rest stay nil.
type FormField struct {
	ID          string          `json:"id"`
	Type        enums.FieldType `json:"type"`
	Label       string          `json:"label"`
	Required    bool            `json:"required"`
	Order       int             `json:"order"`
	Content     *string         `json:"content,omitempty"`
	Placeholder *string         `json:"placeholder,omitempty"`
	HelpText    *string         `json:"help_text,omitempty"`
	Options     []string        `json:"options,omitempty"`
}

// Clone returns a deep copy of the field.
func (f FormField) Clone() FormField {
	out := f
	out.Content = cloneStringPtr(f.Content)
	out.Placeholder = cloneStringPtr(f.Placeholder)
	out.HelpText = cloneStringPtr(f.HelpText)
	if f.Options != nil {
		out.Options = make([]string, len(f.Options))
		copy(out.Options, f.Options)
	}
	return out
}

// FieldList is an ordered set of form fields persisted as JSONB.
type FieldList []FormField

// Clone deep-copies the list. Snapshots taken at signing time rely on this
// so later template edits can never reach a stored submission.
func (l FieldList) Clone() FieldList {
	if l == nil {
		return nil
	}
	out := make(FieldList, len(l))
	for i, f := range l {
		out[i] = f.Clone()
	}
	return out
}

// Sorted returns a copy ordered by the Order attribute. The sort is stable
// so fields sharing an order value keep their authored sequence.
func (l FieldList) Sorted() FieldList {
	out := l.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// Value marshals the list into JSON for Postgres.
func (l FieldList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the list.
func (l *FieldList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("field list: unsupported scan type %T", value)
	}

	result := FieldList{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*l = result
	return nil
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
