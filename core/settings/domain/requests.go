package domain

import "encoding/json"

// UpdateFieldRequest sets one field by name, e.g. {"field":"theme","value":"light"}.
type UpdateFieldRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// PatchRequest is a partial settings object keyed by field name.
type PatchRequest map[string]json.RawMessage

// ImportRequest carries an export document as text.
type ImportRequest struct {
	Data string `json:"data"`
}
