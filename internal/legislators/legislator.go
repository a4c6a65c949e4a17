// Package legislators implements the legislator reference domain. Legislators
// are collected after parties so party membership can resolve against the
// reference table; every later category (expenditures, proposals, votes,
// amendments) references legislators by their identifiers.
package legislators

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Legislator is the canonical legislator record. The source's numeric ID is
// the natural key.
type Legislator struct {
	ID         uuid.UUID  `json:"id"`
	ExternalID int        `json:"external_id"`
	Name       string     `json:"name"`
	PartyID    *uuid.UUID `json:"party_id"`
	State      string     `json:"state"`
	Email      string     `json:"email"`
	PhotoURL   string     `json:"photo_url"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NaturalKey returns the dedup key for the legislator.
func (l Legislator) NaturalKey() string {
	return strconv.Itoa(l.ExternalID)
}

// Ref is the identifier pair later collectors need: the store's UUID for
// foreign keys, the source's numeric ID for per-legislator endpoints.
type Ref struct {
	ID         uuid.UUID
	ExternalID int
}

// Mapped is the result of mapping one source record: the canonical entity
// plus the party abbreviation, which the collector resolves to a party row.
type Mapped struct {
	Legislator        Legislator
	PartyAbbreviation string
}
