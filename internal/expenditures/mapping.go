package expenditures

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

type expenditureRecord struct {
	Ano               int     `json:"ano"`
	Mes               int     `json:"mes"`
	TipoDespesa       string  `json:"tipoDespesa"`
	CodDocumento      int64   `json:"codDocumento"`
	NumDocumento      string  `json:"numDocumento"`
	DataDocumento     string  `json:"dataDocumento"`
	ValorDocumento    float64 `json:"valorDocumento"`
	ValorLiquido      float64 `json:"valorLiquido"`
	NomeFornecedor    string  `json:"nomeFornecedor"`
	CnpjCpfFornecedor string  `json:"cnpjCpfFornecedor"`
}

// Map converts one raw quota record into a canonical expenditure. The
// legislator link is filled in by the collector.
func Map(raw json.RawMessage) (Expenditure, error) {
	var rec expenditureRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Expenditure{}, ingest.Mismatch("expenditure", err)
	}

	if rec.Ano == 0 {
		return Expenditure{}, ingest.Missing("ano")
	}
	if rec.Mes < 1 || rec.Mes > 12 {
		return Expenditure{}, ingest.Missing("mes")
	}

	document := strings.TrimSpace(rec.NumDocumento)
	if document == "" {
		return Expenditure{}, ingest.Missing("numDocumento")
	}

	return Expenditure{
		Year:           rec.Ano,
		Month:          rec.Mes,
		DocumentNumber: document,
		Category:       strings.TrimSpace(rec.TipoDespesa),
		Supplier:       strings.TrimSpace(rec.NomeFornecedor),
		SupplierTaxID:  strings.TrimSpace(rec.CnpjCpfFornecedor),
		GrossValue:     rec.ValorDocumento,
		NetValue:       rec.ValorLiquido,
		DocumentDate:   parseDate(rec.DataDocumento),
	}, nil
}

// parseDate accepts the two timestamp shapes the source emits. Absent or
// unparseable dates map to nil rather than failing the record.
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func scanExpenditure(s repository.Scanner) (Expenditure, error) {
	var e Expenditure
	err := s.Scan(
		&e.ID,
		&e.LegislatorID,
		&e.Year,
		&e.Month,
		&e.DocumentNumber,
		&e.Category,
		&e.Supplier,
		&e.SupplierTaxID,
		&e.GrossValue,
		&e.NetValue,
		&e.DocumentDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}
