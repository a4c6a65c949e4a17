package scoring

import (
	"time"

	"github.com/google/uuid"
)

// CompositeScore is one legislator's scored year under one methodology
// version. Undefined axes persist as NULL; recomputation under the same
// version updates in place, a new version adds a new row.
type CompositeScore struct {
	ID                 uuid.UUID `json:"id"`
	LegislatorID       uuid.UUID `json:"legislator_id"`
	MethodologyVersion string    `json:"methodology_version"`
	Year               int       `json:"year"`
	Legislative        *float64  `json:"legislative"`
	Relevance          *float64  `json:"relevance"`
	Fiscal             *float64  `json:"fiscal"`
	Ethics             *float64  `json:"ethics"`
	Index              float64   `json:"index"`
	ComputedAt         time.Time `json:"computed_at"`
}

// PartySummary is the average stored index across a party's scored
// legislators.
type PartySummary struct {
	PartyID      uuid.UUID `json:"party_id"`
	Abbreviation string    `json:"abbreviation"`
	Name         string    `json:"name"`
	AverageIndex float64   `json:"average_index"`
	Legislators  int       `json:"legislators"`
}

func axisColumn(a Axis) *float64 {
	if !a.Defined {
		return nil
	}
	v := a.Value
	return &v
}
