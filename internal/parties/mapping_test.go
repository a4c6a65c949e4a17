package parties_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/internal/parties"
)

func TestMap(t *testing.T) {
	raw := json.RawMessage(`{"id":36844,"sigla":"PT","nome":"Partido dos Trabalhadores"}`)

	party, err := parties.Map(raw)
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}

	if party.ExternalID != 36844 {
		t.Errorf("external id got %d, want 36844", party.ExternalID)
	}
	if party.Abbreviation != "PT" {
		t.Errorf("abbreviation got %q, want PT", party.Abbreviation)
	}
	if party.Name != "Partido dos Trabalhadores" {
		t.Errorf("name got %q", party.Name)
	}
}

func TestMapRejectsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing sigla", `{"id":1,"nome":"Sem Sigla"}`},
		{"blank sigla", `{"id":1,"sigla":"   ","nome":"Sem Sigla"}`},
		{"missing nome", `{"id":1,"sigla":"XX"}`},
		{"wrong shape", `"PT"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parties.Map(json.RawMessage(tt.raw))

			var mapErr *ingest.MappingError
			if !errors.As(err, &mapErr) {
				t.Errorf("got %v, want a mapping error", err)
			}
		})
	}
}

func TestNaturalKey(t *testing.T) {
	party := parties.Party{Abbreviation: "PSOL"}
	if got := party.NaturalKey(); got != "PSOL" {
		t.Errorf("got %q, want PSOL", got)
	}
}
