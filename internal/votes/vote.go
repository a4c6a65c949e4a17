// Package votes implements the roll-call vote domain. Votes arrive grouped by
// voting session; each session is fanned out into one record per legislator.
package votes

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one legislator's position in one voting session.
type Vote struct {
	ID             uuid.UUID  `json:"id"`
	ExternalVoteID string     `json:"external_vote_id"`
	LegislatorID   uuid.UUID  `json:"legislator_id"`
	Choice         string     `json:"choice"`
	Organ          string     `json:"organ"`
	VotedAt        *time.Time `json:"voted_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NaturalKey returns the composite dedup key: session and legislator. The
// source identifies sessions, not individual ballots.
func (v Vote) NaturalKey() string {
	return v.ExternalVoteID + "|" + v.LegislatorID.String()
}

// Session is one voting event as listed by the source.
type Session struct {
	ExternalID string
	Organ      string
}
