package analysis_test

import (
	"testing"

	"github.com/tribuna-project/tribuna/internal/analysis"
)

func TestTriage(t *testing.T) {
	triage := analysis.NewTriage([]string{"denominação", "Medalha", "data comemorativa"}, 20)

	tests := []struct {
		name    string
		summary string
		trivial bool
	}{
		{
			name:    "keyword hit",
			summary: "Altera a denominação do viaduto localizado no km 23 da BR-040.",
			trivial: true,
		},
		{
			name:    "keyword hit case insensitive",
			summary: "Concede a medalha do mérito legislativo ao cidadão fulano de tal.",
			trivial: true,
		},
		{
			name:    "undersized summary",
			summary: "Altera a lei.",
			trivial: true,
		},
		{
			name:    "substantive proposal",
			summary: "Dispõe sobre o financiamento da atenção primária à saúde nos municípios.",
			trivial: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := triage.Trivial(tt.summary); got != tt.trivial {
				t.Errorf("got %v, want %v", got, tt.trivial)
			}
		})
	}
}

func TestReportTotal(t *testing.T) {
	tests := []struct {
		name     string
		report   analysis.Report
		expected int
	}{
		{
			name: "positives minus penalty",
			report: analysis.Report{
				ScopeImpact:     25,
				GoalAlignment:   20,
				Innovation:      10,
				FiscalSoundness: 15,
				Penalty:         10,
			},
			expected: 60,
		},
		{
			name: "full marks",
			report: analysis.Report{
				ScopeImpact:     30,
				GoalAlignment:   30,
				Innovation:      20,
				FiscalSoundness: 20,
			},
			expected: 100,
		},
		{
			name: "penalty floors at zero",
			report: analysis.Report{
				ScopeImpact: 5,
				Penalty:     15,
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.Total(); got != tt.expected {
				t.Errorf("got %d, want %d", got, tt.expected)
			}
		})
	}
}
