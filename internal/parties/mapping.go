package parties

import (
	"encoding/json"
	"strings"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

type partyRecord struct {
	ID    int    `json:"id"`
	Sigla string `json:"sigla"`
	Nome  string `json:"nome"`
}

// Map converts one raw source record into a canonical Party.
func Map(raw json.RawMessage) (Party, error) {
	var rec partyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Party{}, ingest.Mismatch("party", err)
	}

	sigla := strings.TrimSpace(rec.Sigla)
	if sigla == "" {
		return Party{}, ingest.Missing("sigla")
	}
	if rec.Nome == "" {
		return Party{}, ingest.Missing("nome")
	}

	return Party{
		ExternalID:   rec.ID,
		Abbreviation: sigla,
		Name:         rec.Nome,
	}, nil
}

func scanParty(s repository.Scanner) (Party, error) {
	var p Party
	err := s.Scan(
		&p.ID,
		&p.ExternalID,
		&p.Abbreviation,
		&p.Name,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
