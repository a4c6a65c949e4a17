package scoring_test

import (
	"math"
	"testing"

	"github.com/tribuna-project/tribuna/internal/amendments"
	"github.com/tribuna-project/tribuna/internal/analysis"
	"github.com/tribuna-project/tribuna/internal/config"
	"github.com/tribuna-project/tribuna/internal/proposals"
	"github.com/tribuna-project/tribuna/internal/scoring"
)

func newEngine(t *testing.T, weights config.AxisWeights) *scoring.Engine {
	t.Helper()

	cfg := &config.MethodologyConfig{Weights: weights}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("methodology finalize failed: %v", err)
	}
	return scoring.NewEngine(cfg)
}

func defaultEngine(t *testing.T) *scoring.Engine {
	t.Helper()
	return newEngine(t, config.AxisWeights{})
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestLegislativeAxis(t *testing.T) {
	engine := defaultEngine(t)

	tests := []struct {
		name     string
		inputs   scoring.Inputs
		expected float64
	}{
		{
			name: "excellent on every metric",
			inputs: scoring.Inputs{
				Proposals:  proposals.Stats{Count: 50, DistinctKinds: 5, ActiveMonths: 6},
				Amendments: amendments.Summary{Count: 20, TotalCommitted: 50_000_000},
			},
			expected: 100,
		},
		{
			name: "metrics cap at their thresholds",
			inputs: scoring.Inputs{
				Proposals:  proposals.Stats{Count: 500, DistinctKinds: 12, ActiveMonths: 12},
				Amendments: amendments.Summary{Count: 80, TotalCommitted: 900_000_000},
			},
			expected: 100,
		},
		{
			name: "partial activity scales linearly",
			inputs: scoring.Inputs{
				Proposals: proposals.Stats{Count: 25, DistinctKinds: 5, ActiveMonths: 3},
			},
			expected: 15 + 20 + 10,
		},
		{
			name:     "no activity scores zero but stays defined",
			inputs:   scoring.Inputs{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axes := engine.Score(tt.inputs)
			if !axes.Legislative.Defined {
				t.Fatal("legislative axis must always be defined")
			}
			if !approx(axes.Legislative.Value, tt.expected) {
				t.Errorf("got %v, want %v", axes.Legislative.Value, tt.expected)
			}
		})
	}
}

func TestRelevanceAxis(t *testing.T) {
	engine := defaultEngine(t)

	withAnalysis := engine.Score(scoring.Inputs{
		Analysis: analysis.Summary{NonTrivial: 8, MeanScore: 64.5},
	})
	if !withAnalysis.Relevance.Defined {
		t.Fatal("expected defined relevance axis")
	}
	if !approx(withAnalysis.Relevance.Value, 64.5) {
		t.Errorf("got %v, want 64.5", withAnalysis.Relevance.Value)
	}

	// Only trivial proposals: the mean is meaningless, not zero.
	onlyTrivial := engine.Score(scoring.Inputs{
		Analysis: analysis.Summary{Trivial: 5},
	})
	if onlyTrivial.Relevance.Defined {
		t.Error("relevance must be undefined without non-trivial proposals")
	}
}

func TestFiscalAxis(t *testing.T) {
	engine := defaultEngine(t)

	tests := []struct {
		name     string
		inputs   scoring.Inputs
		defined  bool
		expected float64
	}{
		{
			name: "proposal soundness only",
			inputs: scoring.Inputs{
				Analysis: analysis.Summary{NonTrivial: 4, MeanFiscalSoundness: 15},
			},
			defined: true,
			// 15 of 20 rescaled to 75; the proposal share renormalizes to 1.
			expected: 75,
		},
		{
			name: "amendments only",
			inputs: scoring.Inputs{
				Amendments: amendments.Summary{
					Count:             10,
					TotalCommitted:    10_000_000,
					TotalPaid:         5_000_000,
					DistinctLocations: 5,
				},
			},
			defined: true,
			// disbursement 50, diversification 50, scale 100 over shares .2/.1/.1.
			expected: 62.5,
		},
		{
			name: "both parts at full blend",
			inputs: scoring.Inputs{
				Analysis: analysis.Summary{NonTrivial: 4, MeanFiscalSoundness: 20},
				Amendments: amendments.Summary{
					Count:             20,
					TotalCommitted:    20_000_000,
					TotalPaid:         20_000_000,
					DistinctLocations: 10,
				},
			},
			defined:  true,
			expected: 100,
		},
		{
			name: "oversized average amendment is penalized",
			inputs: scoring.Inputs{
				Amendments: amendments.Summary{
					Count:          1,
					TotalCommitted: 40_000_000,
					TotalPaid:      40_000_000,
				},
			},
			defined: true,
			// disbursement 100, diversification 0, scale 20M/40M = 50.
			expected: (0.2*100 + 0.1*0 + 0.1*50) / 0.4,
		},
		{
			name:    "nothing to blend",
			inputs:  scoring.Inputs{},
			defined: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axes := engine.Score(tt.inputs)
			if axes.Fiscal.Defined != tt.defined {
				t.Fatalf("defined got %v, want %v", axes.Fiscal.Defined, tt.defined)
			}
			if tt.defined && !approx(axes.Fiscal.Value, tt.expected) {
				t.Errorf("got %v, want %v", axes.Fiscal.Value, tt.expected)
			}
		})
	}
}

func TestEthicsAxis(t *testing.T) {
	engine := defaultEngine(t)

	scored := engine.Score(scoring.Inputs{
		Analysis: analysis.Summary{NonTrivial: 10, Trivial: 10, HighScoring: 4},
	})
	if !scored.Ethics.Defined {
		t.Fatal("expected defined ethics axis")
	}
	// quality 0.4 of 60 points, seriousness 0.5 of 40 points.
	if !approx(scored.Ethics.Value, 44) {
		t.Errorf("got %v, want 44", scored.Ethics.Value)
	}

	nothing := engine.Score(scoring.Inputs{})
	if nothing.Ethics.Defined {
		t.Error("ethics must be undefined with nothing analyzed")
	}

	disabled := newEngine(t, config.AxisWeights{Legislative: 0.41, Relevance: 0.35, Fiscal: 0.24})
	if axes := disabled.Score(scoring.Inputs{
		Analysis: analysis.Summary{NonTrivial: 10, HighScoring: 10},
	}); axes.Ethics.Defined {
		t.Error("ethics must be undefined when the methodology disables it")
	}
}

func TestComposite(t *testing.T) {
	engine := newEngine(t, config.AxisWeights{Legislative: 0.41, Relevance: 0.35, Fiscal: 0.24})

	axes := scoring.Axes{
		Legislative: scoring.Axis{Value: 80, Defined: true},
		Relevance:   scoring.Axis{Value: 62, Defined: true},
		Fiscal:      scoring.Axis{Value: 70, Defined: true},
	}

	if got := engine.Composite(axes); !approx(got, 71.3) {
		t.Errorf("got %v, want 71.3", got)
	}
}

func TestCompositeRenormalizesUndefinedAxes(t *testing.T) {
	engine := defaultEngine(t)

	onlyLegislative := scoring.Axes{
		Legislative: scoring.Axis{Value: 80, Defined: true},
	}
	if got := engine.Composite(onlyLegislative); !approx(got, 80) {
		t.Errorf("got %v, want 80", got)
	}

	twoAxes := scoring.Axes{
		Legislative: scoring.Axis{Value: 60, Defined: true},
		Relevance:   scoring.Axis{Value: 90, Defined: true},
	}
	// 0.35 and 0.30 renormalize to 35/65 and 30/65.
	expected := (60*0.35 + 90*0.30) / 0.65
	if got := engine.Composite(twoAxes); !approx(got, expected) {
		t.Errorf("got %v, want %v", got, expected)
	}

	if got := engine.Composite(scoring.Axes{}); got != 0 {
		t.Errorf("all-undefined composite got %v, want 0", got)
	}
}
