// Package scoring computes the versioned composite performance index per
// legislator from ingested activity and analysis results.
package scoring

import (
	"github.com/tribuna-project/tribuna/internal/amendments"
	"github.com/tribuna-project/tribuna/internal/analysis"
	"github.com/tribuna-project/tribuna/internal/config"
	"github.com/tribuna-project/tribuna/internal/proposals"
)

// Axis is one scored component. Undefined axes are excluded from the index
// and their weight is redistributed over the defined ones.
type Axis struct {
	Value   float64
	Defined bool
}

func defined(value float64) Axis {
	return Axis{Value: clamp(value), Defined: true}
}

// Axes are the four components of the composite index.
type Axes struct {
	Legislative Axis
	Relevance   Axis
	Fiscal      Axis
	Ethics      Axis
}

// Inputs are the per-legislator aggregates the engine scores from.
type Inputs struct {
	Proposals  proposals.Stats
	Amendments amendments.Summary
	Analysis   analysis.Summary
}

// Engine scores legislators under one methodology version. All thresholds
// and weights come from the versioned methodology table; the engine holds no
// constants of its own.
type Engine struct {
	m *config.MethodologyConfig
}

// NewEngine creates a scoring engine for the given methodology.
func NewEngine(m *config.MethodologyConfig) *Engine {
	return &Engine{m: m}
}

// Version returns the methodology version the engine scores under.
func (e *Engine) Version() string {
	return e.m.Version
}

// Score computes all four axes for one legislator.
func (e *Engine) Score(in Inputs) Axes {
	return Axes{
		Legislative: e.legislative(in),
		Relevance:   e.relevance(in),
		Fiscal:      e.fiscal(in),
		Ethics:      e.ethics(in),
	}
}

// legislative sums capped linear activity metrics, each scaled against its
// "excellent" threshold.
func (e *Engine) legislative(in Inputs) Axis {
	t := e.m.Legislative

	value := ratio(float64(in.Proposals.Count), float64(t.ExcellentProposals))*t.QuantityPoints +
		ratio(float64(in.Proposals.DistinctKinds), float64(t.ExcellentTypes))*t.DiversityPoints +
		ratio(float64(in.Proposals.ActiveMonths), float64(t.ExcellentMonths))*t.ConstancyPoints +
		ratio(float64(in.Amendments.Count), float64(t.ExcellentAmendments))*t.AmendmentCountPoints +
		ratio(in.Amendments.TotalCommitted, t.ExcellentAmendmentValue)*t.AmendmentValuePoints

	return defined(value)
}

// relevance is the mean relevance score over non-trivial proposals. With zero
// non-trivial proposals the axis is undefined, not zero.
func (e *Engine) relevance(in Inputs) Axis {
	if in.Analysis.NonTrivial == 0 {
		return Axis{}
	}
	return defined(in.Analysis.MeanScore)
}

// fiscal blends proposal fiscal soundness with amendment execution
// sub-metrics. Shares of unavailable parts are redistributed over the
// available ones; with no analyzed proposals and no amendments the axis is
// undefined.
func (e *Engine) fiscal(in Inputs) Axis {
	f := e.m.Fiscal

	var value, shares float64

	if in.Analysis.NonTrivial > 0 {
		// Soundness is bounded by the sub-score maximum; rescale to 0-100.
		soundness := in.Analysis.MeanFiscalSoundness * 100 / float64(analysis.MaxFiscalSoundness)
		value += f.ProposalShare * soundness
		shares += f.ProposalShare
	}

	if in.Amendments.Count > 0 {
		value += f.DisbursementShare * disbursementEfficiency(in.Amendments) * 100
		value += f.DiversificationShare * ratio(float64(in.Amendments.DistinctLocations), float64(f.ExcellentLocations)) * 100
		value += f.ScaleShare * scaleAppropriateness(in.Amendments, f.ScaleCeiling) * 100
		shares += f.DisbursementShare + f.DiversificationShare + f.ScaleShare
	}

	if shares == 0 {
		return Axis{}
	}
	return defined(value / shares)
}

// ethics scores quality (share of high-scoring proposals) and seriousness
// (inverse trivial rate). Disabled methodologies and legislators with no
// analyzed proposals leave the axis undefined.
func (e *Engine) ethics(in Inputs) Axis {
	if !e.m.EthicsEnabled() {
		return Axis{}
	}

	analyzed := in.Analysis.NonTrivial + in.Analysis.Trivial
	if analyzed == 0 {
		return Axis{}
	}

	p := e.m.Ethics

	var quality float64
	if in.Analysis.NonTrivial > 0 {
		quality = float64(in.Analysis.HighScoring) / float64(in.Analysis.NonTrivial)
	}
	seriousness := 1 - float64(in.Analysis.Trivial)/float64(analyzed)

	return defined(quality*p.QualityPoints + seriousness*p.SeriousnessPoints)
}

// Composite folds the axes into the weighted index, renormalizing over the
// defined axes. All axes undefined yields zero.
func (e *Engine) Composite(a Axes) float64 {
	w := e.m.Weights

	var sum, weights float64
	for _, pair := range []struct {
		axis   Axis
		weight float64
	}{
		{a.Legislative, w.Legislative},
		{a.Relevance, w.Relevance},
		{a.Fiscal, w.Fiscal},
		{a.Ethics, w.Ethics},
	} {
		if !pair.axis.Defined || pair.weight == 0 {
			continue
		}
		sum += pair.axis.Value * pair.weight
		weights += pair.weight
	}

	if weights == 0 {
		return 0
	}
	return clamp(sum / weights)
}

// disbursementEfficiency is the paid fraction of committed amendment value.
func disbursementEfficiency(s amendments.Summary) float64 {
	if s.TotalCommitted <= 0 {
		return 0
	}
	return ratio(s.TotalPaid, s.TotalCommitted)
}

// scaleAppropriateness penalizes average amendment values above the ceiling
// for an individual mandate.
func scaleAppropriateness(s amendments.Summary, ceiling float64) float64 {
	if s.Count == 0 || ceiling <= 0 {
		return 0
	}
	average := s.TotalCommitted / float64(s.Count)
	if average <= ceiling {
		return 1
	}
	return ceiling / average
}

func ratio(value, excellent float64) float64 {
	if excellent <= 0 {
		return 0
	}
	if value >= excellent {
		return 1
	}
	if value < 0 {
		return 0
	}
	return value / excellent
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
