package ingest

import (
	"encoding/json"
	"fmt"
)

// Records extracts the per-record raw messages from a fetched page body.
// The chamber API wraps records in a {"dados": [...]} envelope; the
// transparency portal returns a bare JSON array. Both shapes are handled so
// collectors stay source-agnostic.
func Records(body []byte) ([]json.RawMessage, error) {
	var envelope struct {
		Dados []json.RawMessage `json:"dados"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Dados != nil {
		return envelope.Dados, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	return nil, fmt.Errorf("page body is neither an envelope nor an array")
}

// Record extracts a single-record {"dados": {...}} envelope, used by detail
// endpoints.
func Record(body []byte) (json.RawMessage, error) {
	var envelope struct {
		Dados json.RawMessage `json:"dados"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode detail envelope: %w", err)
	}
	if len(envelope.Dados) == 0 {
		return nil, fmt.Errorf("detail envelope has no dados")
	}
	return envelope.Dados, nil
}
