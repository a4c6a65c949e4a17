// Package parties implements the political-party reference domain: canonical
// entity, source mapping, idempotent persistence, and collection from the
// chamber API. Parties are reference data; legislators resolve their party
// by abbreviation during their own collection pass.
package parties

import (
	"time"

	"github.com/google/uuid"
)

// Party is the canonical party record. The abbreviation is the natural key:
// the source occasionally renumbers parties, but the registered abbreviation
// is stable and unique.
type Party struct {
	ID           uuid.UUID `json:"id"`
	ExternalID   int       `json:"external_id"`
	Abbreviation string    `json:"abbreviation"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NaturalKey returns the dedup key for the party.
func (p Party) NaturalKey() string {
	return p.Abbreviation
}
