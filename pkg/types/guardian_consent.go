package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GuardianConsent is the supplemental consent record captured when a signer
// is below the template's age requirement. Once written it is immutable.
type GuardianConsent struct {
	GuardianName          string    `json:"guardian_name"`
	GuardianRelationship  string    `json:"guardian_relationship"`
	GuardianPhone         *string   `json:"guardian_phone,omitempty"`
	GuardianEmail         *string   `json:"guardian_email,omitempty"`
	GuardianSignatureData string    `json:"guardian_signature_data"`
	Notes                 *string   `json:"notes,omitempty"`
	ConsentedAt           time.Time `json:"consented_at"`
}

// Value marshals the record into JSON for Postgres.
func (g GuardianConsent) Value() (driver.Value, error) {
	buf, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the record.
func (g *GuardianConsent) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("guardian consent: unsupported scan type %T", value)
	}

	return json.Unmarshal(raw, g)
}
