package votes

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

type sessionRecord struct {
	ID         string `json:"id"`
	SiglaOrgao string `json:"siglaOrgao"`
}

type voteRecord struct {
	TipoVoto         string `json:"tipoVoto"`
	DataRegistroVoto string `json:"dataRegistroVoto"`
	Deputado         struct {
		ID int `json:"id"`
	} `json:"deputado_"`
}

// MapSession converts one raw voting-session record.
func MapSession(raw json.RawMessage) (Session, error) {
	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Session{}, ingest.Mismatch("voting session", err)
	}

	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return Session{}, ingest.Missing("id")
	}

	return Session{
		ExternalID: id,
		Organ:      strings.TrimSpace(rec.SiglaOrgao),
	}, nil
}

// Mapped is one ballot before legislator resolution.
type Mapped struct {
	Vote               Vote
	LegislatorExternal int
}

// MapVote converts one raw ballot from a session's votes payload. The session
// fields are folded in by the collector.
func MapVote(raw json.RawMessage) (Mapped, error) {
	var rec voteRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Mapped{}, ingest.Mismatch("vote", err)
	}

	if rec.Deputado.ID == 0 {
		return Mapped{}, ingest.Missing("deputado_.id")
	}
	choice := strings.TrimSpace(rec.TipoVoto)
	if choice == "" {
		return Mapped{}, ingest.Missing("tipoVoto")
	}

	return Mapped{
		Vote: Vote{
			Choice:  choice,
			VotedAt: parseTimestamp(rec.DataRegistroVoto),
		},
		LegislatorExternal: rec.Deputado.ID,
	}, nil
}

func parseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func scanVote(s repository.Scanner) (Vote, error) {
	var v Vote
	err := s.Scan(
		&v.ID,
		&v.ExternalVoteID,
		&v.LegislatorID,
		&v.Choice,
		&v.Organ,
		&v.VotedAt,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}
