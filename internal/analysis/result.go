// Package analysis routes proposals through triage and an external relevance
// model, persisting one result per proposal per analysis version.
package analysis

import (
	"time"

	"github.com/google/uuid"
)

// Triage statuses. A proposal with no result row under the current analysis
// version is pending.
const (
	StatusTrivial    = "trivial"
	StatusNonTrivial = "non_trivial"
)

// Sub-score and penalty maxima.
const (
	MaxScopeImpact     = 30
	MaxGoalAlignment   = 30
	MaxInnovation      = 20
	MaxFiscalSoundness = 20
	MaxPenalty         = 15
)

// Result is the persisted analysis outcome for one proposal. Trivial results
// carry zero scores and are never re-analyzed under the same version.
type Result struct {
	ID              uuid.UUID `json:"id"`
	ProposalID      uuid.UUID `json:"proposal_id"`
	AnalysisVersion string    `json:"analysis_version"`
	Status          string    `json:"status"`
	ScopeImpact     int       `json:"scope_impact"`
	GoalAlignment   int       `json:"goal_alignment"`
	Innovation      int       `json:"innovation"`
	FiscalSoundness int       `json:"fiscal_soundness"`
	Penalty         int       `json:"penalty"`
	TotalScore      int       `json:"total_score"`
	Rationale       string    `json:"rationale"`
	CreatedAt       time.Time `json:"created_at"`
}

// Report is one relevance assessment as returned by the analyzer, already
// clamped to the documented maxima.
type Report struct {
	ScopeImpact     int
	GoalAlignment   int
	Innovation      int
	FiscalSoundness int
	Penalty         int
	Rationale       string
}

// Total returns the bounded composite: positives minus penalty, floored at
// zero. The positives cap at 100 by construction.
func (r Report) Total() int {
	total := r.ScopeImpact + r.GoalAlignment + r.Innovation + r.FiscalSoundness - r.Penalty
	if total < 0 {
		return 0
	}
	return total
}
