package fields

import (
	"fmt"
	"strings"

	"github.com/simmonsmd7/inkflow-sub002/pkg/types"
)

// ValidateDefinition checks a template's field list for structural
// problems before it is saved: ids must be unique, option-bearing types
// need options, and display-only fields can never be required.
func ValidateDefinition(list types.FieldList) Errors {
	errs := Errors{}
	seen := map[string]bool{}

	for i, field := range list {
		key := field.ID
		if key == "" {
			key = fmt.Sprintf("fields[%d]", i)
			errs[key] = "Field id is required"
			continue
		}
		if seen[field.ID] {
			errs[field.ID] = "Field id is duplicated"
			continue
		}
		seen[field.ID] = true

		if !field.Type.IsValid() {
			errs[field.ID] = fmt.Sprintf("Unknown field type %q", string(field.Type))
			continue
		}

		if field.Type.IsStatic() {
			if field.Required {
				errs[field.ID] = "Display fields cannot be required"
			}
			continue
		}

		if strings.TrimSpace(field.Label) == "" {
			errs[field.ID] = "Field label is required"
			continue
		}

		if field.Type.HasOptions() && len(field.Options) == 0 {
			errs[field.ID] = "At least one option is required"
		}
	}

	return errs
}
