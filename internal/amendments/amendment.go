// Package amendments implements the budget-amendment domain. Amendments come
// from the federal transparency portal, which paginates by offset and formats
// monetary values in pt-BR notation.
package amendments

import (
	"time"

	"github.com/google/uuid"
)

// Amendment is one budget amendment proposed against the federal budget.
// Committee-sourced amendments carry no individual author, so the legislator
// link is optional.
type Amendment struct {
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"code"`
	Year         int        `json:"year"`
	LegislatorID *uuid.UUID `json:"legislator_id"`
	AuthorName   string     `json:"author_name"`
	Kind         string     `json:"kind"`
	Function     string     `json:"function"`
	Location     string     `json:"location"`
	Committed    float64    `json:"committed"`
	Settled      float64    `json:"settled"`
	Paid         float64    `json:"paid"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NaturalKey returns the source-assigned amendment code.
func (a Amendment) NaturalKey() string {
	return a.Code
}
