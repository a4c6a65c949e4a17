package proposals

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

type proposalRecord struct {
	ID        int    `json:"id"`
	SiglaTipo string `json:"siglaTipo"`
	Numero    int    `json:"numero"`
	Ano       int    `json:"ano"`
	Ementa    string `json:"ementa"`
}

type proposalDetail struct {
	DataApresentacao string `json:"dataApresentacao"`
	URLInteiroTeor   string `json:"urlInteiroTeor"`
	StatusProposicao struct {
		DescricaoSituacao string `json:"descricaoSituacao"`
	} `json:"statusProposicao"`
}

type authorRecord struct {
	URI  string `json:"uri"`
	Nome string `json:"nome"`
	Tipo string `json:"tipo"`
}

// Map converts one raw list record into a canonical proposal. Detail fields
// and the author link are filled in by the collector.
func Map(raw json.RawMessage) (Proposal, error) {
	var rec proposalRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Proposal{}, ingest.Mismatch("proposal", err)
	}

	if rec.ID == 0 {
		return Proposal{}, ingest.Missing("id")
	}
	kind := strings.TrimSpace(rec.SiglaTipo)
	if kind == "" {
		return Proposal{}, ingest.Missing("siglaTipo")
	}
	if rec.Ano == 0 {
		return Proposal{}, ingest.Missing("ano")
	}

	return Proposal{
		ExternalID: rec.ID,
		Kind:       kind,
		Number:     rec.Numero,
		Year:       rec.Ano,
		Summary:    strings.TrimSpace(rec.Ementa),
	}, nil
}

// MapDetail folds detail-endpoint fields into the proposal.
func MapDetail(p *Proposal, raw json.RawMessage) error {
	var detail proposalDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return ingest.Mismatch("proposal detail", err)
	}

	p.Status = strings.TrimSpace(detail.StatusProposicao.DescricaoSituacao)
	p.FullTextURL = strings.TrimSpace(detail.URLInteiroTeor)
	p.PresentedAt = parseTimestamp(detail.DataApresentacao)
	return nil
}

// AuthorExternalID extracts the first individual author's legislator ID from
// the authors payload. Returns 0 when no author resolves to a legislator,
// which happens for committee- or senate-originated proposals.
func AuthorExternalID(records []json.RawMessage) int {
	for _, raw := range records {
		var rec authorRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		if id := legislatorIDFromURI(rec.URI); id != 0 {
			return id
		}
	}
	return 0
}

// legislatorIDFromURI pulls the numeric ID off a deputado resource URI. Any
// other URI shape yields 0.
func legislatorIDFromURI(uri string) int {
	uri = strings.TrimRight(strings.TrimSpace(uri), "/")
	idx := strings.LastIndex(uri, "/deputados/")
	if idx < 0 {
		return 0
	}
	id, err := strconv.Atoi(uri[idx+len("/deputados/"):])
	if err != nil {
		return 0
	}
	return id
}

func parseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func scanProposal(s repository.Scanner) (Proposal, error) {
	var p Proposal
	err := s.Scan(
		&p.ID,
		&p.ExternalID,
		&p.LegislatorID,
		&p.Kind,
		&p.Number,
		&p.Year,
		&p.Summary,
		&p.Status,
		&p.PresentedAt,
		&p.FullTextURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.ProposalID,
		&d.URL,
		&d.PageCount,
		&d.ArchiveKey,
		&d.FetchedAt,
	)
	return d, err
}
