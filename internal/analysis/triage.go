package analysis

import (
	"strings"
	"unicode/utf8"
)

// Triage decides whether a proposal warrants model analysis. The heuristic is
// deterministic: a keyword hit or an undersized summary marks the proposal
// trivial, everything else goes to the analyzer.
type Triage struct {
	keywords []string
	minRunes int
}

// NewTriage creates a triage router. Keywords are matched case-insensitively
// as substrings of the proposal summary.
func NewTriage(keywords []string, minRunes int) *Triage {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(strings.TrimSpace(k))
	}
	return &Triage{keywords: lowered, minRunes: minRunes}
}

// Trivial reports whether the summary describes ceremonial or administrative
// matter with no relevance signal worth paying for.
func (t *Triage) Trivial(summary string) bool {
	summary = strings.TrimSpace(summary)
	if utf8.RuneCountInString(summary) < t.minRunes {
		return true
	}

	lowered := strings.ToLower(summary)
	for _, keyword := range t.keywords {
		if keyword != "" && strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
