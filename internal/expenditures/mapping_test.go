package expenditures_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/internal/expenditures"
	"github.com/tribuna-project/tribuna/internal/ingest"
)

func TestMap(t *testing.T) {
	raw := json.RawMessage(`{
		"ano": 2025,
		"mes": 3,
		"tipoDespesa": "COMBUSTÍVEIS E LUBRIFICANTES.",
		"codDocumento": 7784562,
		"numDocumento": "158964",
		"dataDocumento": "2025-03-14T00:00:00",
		"valorDocumento": 250.00,
		"valorLiquido": 248.37,
		"nomeFornecedor": "POSTO CENTRAL LTDA",
		"cnpjCpfFornecedor": "00306597000104"
	}`)

	exp, err := expenditures.Map(raw)
	if err != nil {
		t.Fatalf("map failed: %v", err)
	}

	if exp.Year != 2025 || exp.Month != 3 {
		t.Errorf("period got %d-%d, want 2025-3", exp.Year, exp.Month)
	}
	if exp.DocumentNumber != "158964" {
		t.Errorf("document got %q, want 158964", exp.DocumentNumber)
	}
	if exp.NetValue != 248.37 {
		t.Errorf("net value got %v, want 248.37", exp.NetValue)
	}
	if exp.DocumentDate == nil {
		t.Fatal("expected document date")
	}
	if got := exp.DocumentDate.Format("2006-01-02"); got != "2025-03-14" {
		t.Errorf("document date got %s, want 2025-03-14", got)
	}
}

func TestMapRejectsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing year", `{"mes":3,"numDocumento":"1"}`},
		{"month out of range", `{"ano":2025,"mes":13,"numDocumento":"1"}`},
		{"blank document", `{"ano":2025,"mes":3,"numDocumento":"  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := expenditures.Map(json.RawMessage(tt.raw))

			var mapErr *ingest.MappingError
			if !errors.As(err, &mapErr) {
				t.Errorf("got %v, want a mapping error", err)
			}
		})
	}
}

func TestMapToleratesAbsentDate(t *testing.T) {
	tests := []struct {
		name string
		date string
	}{
		{"empty", ""},
		{"unparseable", "14/03/2025"},
		{"date only", "2025-03-14"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, _ := json.Marshal(map[string]any{
				"ano":           2025,
				"mes":           3,
				"numDocumento":  "1",
				"dataDocumento": tt.date,
			})

			exp, err := expenditures.Map(raw)
			if err != nil {
				t.Fatalf("map failed: %v", err)
			}
			if tt.name == "date only" && exp.DocumentDate == nil {
				t.Error("expected date-only value to parse")
			}
			if tt.name != "date only" && exp.DocumentDate != nil {
				t.Errorf("expected nil date, got %v", exp.DocumentDate)
			}
		})
	}
}

func TestNaturalKey(t *testing.T) {
	id := uuid.MustParse("0d4bb777-2166-4c0c-a01c-7bbba84f6b25")
	exp := expenditures.Expenditure{
		LegislatorID:   id,
		Year:           2025,
		Month:          3,
		DocumentNumber: "158964",
		NetValue:       248.37,
	}

	expected := "0d4bb777-2166-4c0c-a01c-7bbba84f6b25|2025|03|158964|248.37"
	if got := exp.NaturalKey(); got != expected {
		t.Errorf("got %q, want %q", got, expected)
	}
}
