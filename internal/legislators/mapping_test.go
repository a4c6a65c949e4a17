package legislators_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/internal/legislators"
)

func TestMap(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 204554,
		"nome": "Tabata Amaral",
		"siglaPartido": "PSB",
		"siglaUf": "SP",
		"urlFoto": "https://www.camara.leg.br/internet/deputado/bandep/204554.jpg",
		"email": "dep.tabataamaral@camara.leg.br"
	}`)

	mapped, err := legislators.Map(raw)
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}

	if mapped.Legislator.ExternalID != 204554 {
		t.Errorf("external id got %d, want 204554", mapped.Legislator.ExternalID)
	}
	if mapped.Legislator.Name != "Tabata Amaral" {
		t.Errorf("name got %q", mapped.Legislator.Name)
	}
	if mapped.Legislator.State != "SP" {
		t.Errorf("state got %q, want SP", mapped.Legislator.State)
	}
	if mapped.PartyAbbreviation != "PSB" {
		t.Errorf("party got %q, want PSB", mapped.PartyAbbreviation)
	}
}

func TestMapRejectsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing id", `{"nome":"Sem Registro","siglaPartido":"XX"}`},
		{"blank name", `{"id":1,"nome":"  "}`},
		{"wrong shape", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := legislators.Map(json.RawMessage(tt.raw))

			var mapErr *ingest.MappingError
			if !errors.As(err, &mapErr) {
				t.Errorf("got %v, want a mapping error", err)
			}
		})
	}
}

func TestMapTrimsPartyAbbreviation(t *testing.T) {
	raw := json.RawMessage(`{"id":1,"nome":"Nome","siglaPartido":" MDB "}`)

	mapped, err := legislators.Map(raw)
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}
	if mapped.PartyAbbreviation != "MDB" {
		t.Errorf("party got %q, want MDB", mapped.PartyAbbreviation)
	}
}
