package legislators

import (
	"encoding/json"
	"strings"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

type legislatorRecord struct {
	ID           int    `json:"id"`
	Nome         string `json:"nome"`
	SiglaPartido string `json:"siglaPartido"`
	SiglaUf      string `json:"siglaUf"`
	URLFoto      string `json:"urlFoto"`
	Email        string `json:"email"`
}

// Map converts one raw source record into a canonical legislator plus the
// party abbreviation to resolve.
func Map(raw json.RawMessage) (Mapped, error) {
	var rec legislatorRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Mapped{}, ingest.Mismatch("legislator", err)
	}

	if rec.ID == 0 {
		return Mapped{}, ingest.Missing("id")
	}
	name := strings.TrimSpace(rec.Nome)
	if name == "" {
		return Mapped{}, ingest.Missing("nome")
	}

	return Mapped{
		Legislator: Legislator{
			ExternalID: rec.ID,
			Name:       name,
			State:      rec.SiglaUf,
			Email:      rec.Email,
			PhotoURL:   rec.URLFoto,
		},
		PartyAbbreviation: strings.TrimSpace(rec.SiglaPartido),
	}, nil
}

func scanLegislator(s repository.Scanner) (Legislator, error) {
	var l Legislator
	err := s.Scan(
		&l.ID,
		&l.ExternalID,
		&l.Name,
		&l.PartyID,
		&l.State,
		&l.Email,
		&l.PhotoURL,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

func scanRef(s repository.Scanner) (Ref, error) {
	var r Ref
	err := s.Scan(&r.ID, &r.ExternalID)
	return r, err
}
