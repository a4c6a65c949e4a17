package config

import (
	"fmt"
	"math"
	"os"
)

const EnvMethodologyVersion = "TRIBUNA_METHODOLOGY_VERSION"

// AxisWeights are the composite-index weights per scoring axis. A zero
// Ethics weight disables that axis entirely; it is omitted from the index,
// not folded into the other axes.
type AxisWeights struct {
	Legislative float64 `toml:"legislative"`
	Relevance   float64 `toml:"relevance"`
	Fiscal      float64 `toml:"fiscal"`
	Ethics      float64 `toml:"ethics"`
}

// LegislativeThresholds are the "excellent" levels for the counted activity
// metrics of the legislative-performance axis. Each metric scales linearly
// up to its threshold and is capped at its point allocation.
type LegislativeThresholds struct {
	ExcellentProposals      int     `toml:"excellent_proposals"`
	ExcellentTypes          int     `toml:"excellent_types"`
	ExcellentMonths         int     `toml:"excellent_months"`
	ExcellentAmendments     int     `toml:"excellent_amendments"`
	ExcellentAmendmentValue float64 `toml:"excellent_amendment_value"`

	QuantityPoints       float64 `toml:"quantity_points"`
	DiversityPoints      float64 `toml:"diversity_points"`
	ConstancyPoints      float64 `toml:"constancy_points"`
	AmendmentCountPoints float64 `toml:"amendment_count_points"`
	AmendmentValuePoints float64 `toml:"amendment_value_points"`
}

// FiscalBlend mixes the fiscal-responsibility axis from the proposal
// fiscal-soundness average and the amendment sub-metrics.
type FiscalBlend struct {
	ProposalShare        float64 `toml:"proposal_share"`
	DisbursementShare    float64 `toml:"disbursement_share"`
	DiversificationShare float64 `toml:"diversification_share"`
	ScaleShare           float64 `toml:"scale_share"`

	// ExcellentLocations is the distinct-beneficiary-location count that
	// earns full geographic-diversification marks.
	ExcellentLocations int `toml:"excellent_locations"`
	// ScaleCeiling is the per-amendment value above which an amendment is
	// considered out of scale for an individual mandate.
	ScaleCeiling float64 `toml:"scale_ceiling"`
}

// EthicsParams parameterize the optional ethics/legality axis.
type EthicsParams struct {
	HighScoreCutoff   float64 `toml:"high_score_cutoff"`
	QualityPoints     float64 `toml:"quality_points"`
	SeriousnessPoints float64 `toml:"seriousness_points"`
}

// MethodologyConfig is one explicit, versioned weight table. Composite
// scores are stored per methodology version and superseded, never
// overwritten, when the version changes.
type MethodologyConfig struct {
	Version     string                `toml:"version"`
	Weights     AxisWeights           `toml:"weights"`
	Legislative LegislativeThresholds `toml:"legislative"`
	Fiscal      FiscalBlend           `toml:"fiscal"`
	Ethics      EthicsParams          `toml:"ethics"`
}

// EthicsEnabled reports whether this methodology version scores the
// ethics/legality axis.
func (c *MethodologyConfig) EthicsEnabled() bool {
	return c.Weights.Ethics > 0
}

// Merge overwrites non-zero fields from overlay.
func (c *MethodologyConfig) Merge(overlay *MethodologyConfig) {
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.Weights != (AxisWeights{}) {
		c.Weights = overlay.Weights
	}
	if overlay.Legislative != (LegislativeThresholds{}) {
		c.Legislative = overlay.Legislative
	}
	if overlay.Fiscal != (FiscalBlend{}) {
		c.Fiscal = overlay.Fiscal
	}
	if overlay.Ethics != (EthicsParams{}) {
		c.Ethics = overlay.Ethics
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MethodologyConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *MethodologyConfig) loadDefaults() {
	if c.Version == "" {
		c.Version = "2025.1"
	}
	if c.Weights == (AxisWeights{}) {
		c.Weights = AxisWeights{
			Legislative: 0.35,
			Relevance:   0.30,
			Fiscal:      0.20,
			Ethics:      0.15,
		}
	}
	if c.Legislative == (LegislativeThresholds{}) {
		c.Legislative = LegislativeThresholds{
			ExcellentProposals:      50,
			ExcellentTypes:          5,
			ExcellentMonths:         6,
			ExcellentAmendments:     20,
			ExcellentAmendmentValue: 50_000_000,
			QuantityPoints:          30,
			DiversityPoints:         20,
			ConstancyPoints:         20,
			AmendmentCountPoints:    15,
			AmendmentValuePoints:    15,
		}
	}
	if c.Fiscal == (FiscalBlend{}) {
		c.Fiscal = FiscalBlend{
			ProposalShare:        0.6,
			DisbursementShare:    0.2,
			DiversificationShare: 0.1,
			ScaleShare:           0.1,
			ExcellentLocations:   10,
			ScaleCeiling:         20_000_000,
		}
	}
	if c.Ethics == (EthicsParams{}) {
		c.Ethics = EthicsParams{
			HighScoreCutoff:   70,
			QualityPoints:     60,
			SeriousnessPoints: 40,
		}
	}
}

func (c *MethodologyConfig) loadEnv() {
	if v := os.Getenv(EnvMethodologyVersion); v != "" {
		c.Version = v
	}
}

func (c *MethodologyConfig) validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"legislative": w.Legislative,
		"relevance":   w.Relevance,
		"fiscal":      w.Fiscal,
		"ethics":      w.Ethics,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("weight %s must be within [0,1]", name)
		}
	}

	sum := w.Legislative + w.Relevance + w.Fiscal + w.Ethics
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("axis weights must sum to 1.0, got %v", sum)
	}

	points := c.Legislative.QuantityPoints +
		c.Legislative.DiversityPoints +
		c.Legislative.ConstancyPoints +
		c.Legislative.AmendmentCountPoints +
		c.Legislative.AmendmentValuePoints
	if math.Abs(points-100) > 1e-9 {
		return fmt.Errorf("legislative point allocations must sum to 100, got %v", points)
	}

	shares := c.Fiscal.ProposalShare +
		c.Fiscal.DisbursementShare +
		c.Fiscal.DiversificationShare +
		c.Fiscal.ScaleShare
	if math.Abs(shares-1.0) > 1e-9 {
		return fmt.Errorf("fiscal blend shares must sum to 1.0, got %v", shares)
	}

	if c.EthicsEnabled() {
		if math.Abs(c.Ethics.QualityPoints+c.Ethics.SeriousnessPoints-100) > 1e-9 {
			return fmt.Errorf("ethics point allocations must sum to 100")
		}
	}

	return nil
}
