package amendments

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

type amendmentRecord struct {
	CodigoEmenda      string          `json:"codigoEmenda"`
	Ano               int             `json:"ano"`
	NomeAutor         string          `json:"nomeAutor"`
	TipoEmenda        string          `json:"tipoEmenda"`
	Funcao            string          `json:"funcao"`
	LocalidadeDoGasto string          `json:"localidadeDoGasto"`
	ValorEmpenhado    json.RawMessage `json:"valorEmpenhado"`
	ValorLiquidado    json.RawMessage `json:"valorLiquidado"`
	ValorPago         json.RawMessage `json:"valorPago"`
}

// Map converts one raw portal record into a canonical amendment. The author
// link is resolved by the collector from the author name.
func Map(raw json.RawMessage) (Amendment, error) {
	var rec amendmentRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Amendment{}, ingest.Mismatch("amendment", err)
	}

	code := strings.TrimSpace(rec.CodigoEmenda)
	if code == "" {
		return Amendment{}, ingest.Missing("codigoEmenda")
	}
	if rec.Ano == 0 {
		return Amendment{}, ingest.Missing("ano")
	}

	committed, err := parseValue(rec.ValorEmpenhado)
	if err != nil {
		return Amendment{}, ingest.Mismatch("valorEmpenhado", err)
	}
	settled, err := parseValue(rec.ValorLiquidado)
	if err != nil {
		return Amendment{}, ingest.Mismatch("valorLiquidado", err)
	}
	paid, err := parseValue(rec.ValorPago)
	if err != nil {
		return Amendment{}, ingest.Mismatch("valorPago", err)
	}

	return Amendment{
		Code:       code,
		Year:       rec.Ano,
		AuthorName: strings.TrimSpace(rec.NomeAutor),
		Kind:       strings.TrimSpace(rec.TipoEmenda),
		Function:   strings.TrimSpace(rec.Funcao),
		Location:   strings.TrimSpace(rec.LocalidadeDoGasto),
		Committed:  committed,
		Settled:    settled,
		Paid:       paid,
	}, nil
}

// parseValue accepts either a JSON number or the portal's pt-BR string
// notation ("1.234.567,89"). Absent values parse as zero.
func parseValue(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

func scanAmendment(s repository.Scanner) (Amendment, error) {
	var a Amendment
	err := s.Scan(
		&a.ID,
		&a.Code,
		&a.Year,
		&a.LegislatorID,
		&a.AuthorName,
		&a.Kind,
		&a.Function,
		&a.Location,
		&a.Committed,
		&a.Settled,
		&a.Paid,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}
