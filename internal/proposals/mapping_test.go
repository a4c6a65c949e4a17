package proposals_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/internal/proposals"
)

func TestMap(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 2373298,
		"siglaTipo": "PL",
		"numero": 1234,
		"ano": 2025,
		"ementa": "Dispõe sobre a transparência de dados públicos."
	}`)

	proposal, err := proposals.Map(raw)
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}

	if proposal.ExternalID != 2373298 {
		t.Errorf("external id got %d, want 2373298", proposal.ExternalID)
	}
	if proposal.Kind != "PL" || proposal.Number != 1234 || proposal.Year != 2025 {
		t.Errorf("identity got %s %d/%d", proposal.Kind, proposal.Number, proposal.Year)
	}
	if proposal.Summary == "" {
		t.Error("expected summary")
	}
}

func TestMapRejectsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing id", `{"siglaTipo":"PL","ano":2025}`},
		{"missing kind", `{"id":1,"ano":2025}`},
		{"missing year", `{"id":1,"siglaTipo":"PL"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := proposals.Map(json.RawMessage(tt.raw))

			var mapErr *ingest.MappingError
			if !errors.As(err, &mapErr) {
				t.Errorf("got %v, want a mapping error", err)
			}
		})
	}
}

func TestMapDetail(t *testing.T) {
	proposal := proposals.Proposal{ExternalID: 2373298}
	raw := json.RawMessage(`{
		"dataApresentacao": "2025-04-02T14:30",
		"urlInteiroTeor": "https://www.camara.leg.br/prop/2373298.pdf",
		"statusProposicao": {"descricaoSituacao": "Aguardando Parecer"}
	}`)

	if err := proposals.MapDetail(&proposal, raw); err != nil {
		t.Fatalf("map detail failed: %v", err)
	}

	if proposal.Status != "Aguardando Parecer" {
		t.Errorf("status got %q", proposal.Status)
	}
	if proposal.FullTextURL != "https://www.camara.leg.br/prop/2373298.pdf" {
		t.Errorf("full text url got %q", proposal.FullTextURL)
	}
	if proposal.PresentedAt == nil {
		t.Fatal("expected presentation timestamp")
	}
	if got := proposal.PresentedAt.Format("2006-01-02 15:04"); got != "2025-04-02 14:30" {
		t.Errorf("presented at got %s", got)
	}
}

func TestAuthorExternalID(t *testing.T) {
	tests := []struct {
		name     string
		records  []string
		expected int
	}{
		{
			name:     "individual author",
			records:  []string{`{"uri":"https://dadosabertos.camara.leg.br/api/v2/deputados/204554","nome":"Tabata Amaral","tipo":"Deputado"}`},
			expected: 204554,
		},
		{
			name: "committee first then individual",
			records: []string{
				`{"uri":"https://dadosabertos.camara.leg.br/api/v2/orgaos/537480","nome":"Comissão X","tipo":"Órgão"}`,
				`{"uri":"https://dadosabertos.camara.leg.br/api/v2/deputados/178957","nome":"Fulano","tipo":"Deputado"}`,
			},
			expected: 178957,
		},
		{
			name:     "committee only",
			records:  []string{`{"uri":"https://dadosabertos.camara.leg.br/api/v2/orgaos/537480","nome":"Comissão X"}`},
			expected: 0,
		},
		{
			name:     "trailing slash",
			records:  []string{`{"uri":"https://dadosabertos.camara.leg.br/api/v2/deputados/204554/"}`},
			expected: 204554,
		},
		{
			name:     "no records",
			records:  nil,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raws []json.RawMessage
			for _, r := range tt.records {
				raws = append(raws, json.RawMessage(r))
			}

			if got := proposals.AuthorExternalID(raws); got != tt.expected {
				t.Errorf("got %d, want %d", got, tt.expected)
			}
		})
	}
}
