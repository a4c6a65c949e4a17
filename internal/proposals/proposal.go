// Package proposals implements the legislative-proposal domain, including
// capture of the proposal's full-text document for priority types.
package proposals

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Proposal is one legislative proposal with its primary author resolved to a
// known legislator. Proposals without an individual author are not ingested.
type Proposal struct {
	ID           uuid.UUID  `json:"id"`
	ExternalID   int        `json:"external_id"`
	LegislatorID uuid.UUID  `json:"legislator_id"`
	Kind         string     `json:"kind"`
	Number       int        `json:"number"`
	Year         int        `json:"year"`
	Summary      string     `json:"summary"`
	Status       string     `json:"status"`
	PresentedAt  *time.Time `json:"presented_at"`
	FullTextURL  string     `json:"full_text_url"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NaturalKey returns the source-assigned proposal ID.
func (p Proposal) NaturalKey() string {
	return strconv.Itoa(p.ExternalID)
}

// Document is the archived full text of a proposal, at most one per proposal.
type Document struct {
	ID         uuid.UUID `json:"id"`
	ProposalID uuid.UUID `json:"proposal_id"`
	URL        string    `json:"url"`
	PageCount  int       `json:"page_count"`
	ArchiveKey string    `json:"archive_key"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Stats aggregates one legislator's proposal activity for a year, feeding the
// legislative-performance axis.
type Stats struct {
	LegislatorID  uuid.UUID
	Year          int
	Count         int
	DistinctKinds int
	ActiveMonths  int
}
