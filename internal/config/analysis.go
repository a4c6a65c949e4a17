package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvAnalysisBaseURL        = "TRIBUNA_ANALYSIS_BASE_URL"
	EnvAnalysisToken          = "TRIBUNA_ANALYSIS_TOKEN"
	EnvAnalysisModel          = "TRIBUNA_ANALYSIS_MODEL"
	EnvAnalysisMaxConcurrency = "TRIBUNA_ANALYSIS_MAX_CONCURRENCY"
)

// AnalysisConfig holds the relevance-analysis parameters: the external model
// boundary (an OpenAI-compatible endpoint) and the triage heuristics that
// gate it. Version scopes stored analysis results; bumping it forces
// re-analysis on the next run.
type AnalysisConfig struct {
	BaseURL        string   `toml:"base_url"`
	Token          string   `toml:"token"`
	Model          string   `toml:"model"`
	Version        string   `toml:"version"`
	MaxConcurrency int      `toml:"max_concurrency"`
	BatchLimit     int      `toml:"batch_limit"`
	TriageKeywords []string `toml:"triage_keywords"`
	MinSummaryRune int      `toml:"min_summary_runes"`
}

// Merge overwrites non-zero fields from overlay.
func (c *AnalysisConfig) Merge(overlay *AnalysisConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.MaxConcurrency != 0 {
		c.MaxConcurrency = overlay.MaxConcurrency
	}
	if overlay.BatchLimit != 0 {
		c.BatchLimit = overlay.BatchLimit
	}
	if len(overlay.TriageKeywords) > 0 {
		c.TriageKeywords = overlay.TriageKeywords
	}
	if overlay.MinSummaryRune != 0 {
		c.MinSummaryRune = overlay.MinSummaryRune
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AnalysisConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *AnalysisConfig) loadDefaults() {
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Version == "" {
		c.Version = "v1"
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 4
	}
	if c.BatchLimit == 0 {
		c.BatchLimit = 200
	}
	if c.MinSummaryRune == 0 {
		c.MinSummaryRune = 40
	}
	if len(c.TriageKeywords) == 0 {
		// Nominal or ceremonial proposals that cannot plausibly carry
		// social-relevance weight: street naming, honorifics, calendars.
		c.TriageKeywords = []string{
			"denomina",
			"logradouro",
			"homenagem",
			"batiza",
			"nomeia",
			"data comemorativa",
			"calendário oficial",
			"símbolo nacional",
			"cidadão honorário",
			"título de",
			"capital nacional de",
		}
	}
}

func (c *AnalysisConfig) loadEnv() {
	if v := os.Getenv(EnvAnalysisBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvAnalysisToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvAnalysisModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvAnalysisMaxConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrency = n
		}
	}
}

func (c *AnalysisConfig) validate() error {
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1")
	}
	if c.BatchLimit < 1 {
		return fmt.Errorf("batch_limit must be at least 1")
	}
	if c.MinSummaryRune < 0 {
		return fmt.Errorf("min_summary_runes must not be negative")
	}
	return nil
}
