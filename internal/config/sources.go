package config

import (
	"fmt"

	"github.com/tribuna-project/tribuna/pkg/fetch"
)

var chamberEnv = &fetch.Env{
	BaseURL:    "TRIBUNA_SOURCE_CHAMBER_BASE_URL",
	MinDelay:   "TRIBUNA_SOURCE_CHAMBER_MIN_DELAY",
	Timeout:    "TRIBUNA_SOURCE_CHAMBER_TIMEOUT",
	MaxRetries: "TRIBUNA_SOURCE_CHAMBER_MAX_RETRIES",
}

var treasuryEnv = &fetch.Env{
	BaseURL:    "TRIBUNA_SOURCE_TREASURY_BASE_URL",
	MinDelay:   "TRIBUNA_SOURCE_TREASURY_MIN_DELAY",
	Timeout:    "TRIBUNA_SOURCE_TREASURY_TIMEOUT",
	MaxRetries: "TRIBUNA_SOURCE_TREASURY_MAX_RETRIES",
}

// SourcesConfig holds the per-source fetch parameters. Chamber is the lower
// chamber's open-data API (legislators, parties, expenditures, proposals,
// votes); Treasury is the federal transparency portal (budget amendments).
// Each source gets exactly one pacing gate, shared by all its collectors.
type SourcesConfig struct {
	Chamber  fetch.Config `toml:"chamber"`
	Treasury fetch.Config `toml:"treasury"`
}

// Merge overwrites non-zero fields from overlay.
func (c *SourcesConfig) Merge(overlay *SourcesConfig) {
	c.Chamber.Merge(&overlay.Chamber)
	c.Treasury.Merge(&overlay.Treasury)
}

// Finalize applies defaults, environment variable overrides, and validation
// to each source.
func (c *SourcesConfig) Finalize() error {
	c.loadDefaults()

	if err := c.Chamber.Finalize(chamberEnv); err != nil {
		return fmt.Errorf("chamber: %w", err)
	}
	if err := c.Treasury.Finalize(treasuryEnv); err != nil {
		return fmt.Errorf("treasury: %w", err)
	}
	return nil
}

func (c *SourcesConfig) loadDefaults() {
	if c.Chamber.BaseURL == "" {
		c.Chamber.BaseURL = "https://dadosabertos.camara.leg.br/api/v2"
	}
	if c.Chamber.Pagination == "" {
		c.Chamber.Pagination = fetch.PaginationPage
	}
	if c.Treasury.BaseURL == "" {
		c.Treasury.BaseURL = "https://api.portaldatransparencia.gov.br/api-de-dados"
	}
	if c.Treasury.Pagination == "" {
		c.Treasury.Pagination = fetch.PaginationOffset
	}
	if c.Treasury.MinDelay == "" {
		c.Treasury.MinDelay = "700ms"
	}
}
