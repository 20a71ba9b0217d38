package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ResponseMap holds a client's answers keyed by field id, persisted as JSONB.
// Values are strings for text-like fields and bools for checkboxes.
type ResponseMap map[string]any

// Value marshals the map into JSON for Postgres.
func (m ResponseMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the map.
func (m *ResponseMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("response map: unsupported scan type %T", value)
	}

	result := make(ResponseMap)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

// Clone shallow-copies the map; values are JSON scalars so this is a deep
// copy in practice.
func (m ResponseMap) Clone() ResponseMap {
	if m == nil {
		return nil
	}
	out := make(ResponseMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
