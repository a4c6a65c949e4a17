package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvCollectYear             = "TRIBUNA_COLLECT_YEAR"
	EnvCollectFailureThreshold = "TRIBUNA_COLLECT_FAILURE_THRESHOLD"
)

// CategoryConfig holds per-category collection parameters. MaxRecords bounds
// worst-case run time (0 means unbounded, the production default); CacheTTL
// is the response-cache lifetime for that category's endpoints. Disabled
// skips the category entirely.
type CategoryConfig struct {
	Disabled   bool   `toml:"disabled"`
	MaxRecords int    `toml:"max_records"`
	CacheTTL   string `toml:"cache_ttl"`
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c *CategoryConfig) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

func (c *CategoryConfig) merge(overlay *CategoryConfig) {
	if overlay.Disabled {
		c.Disabled = true
	}
	if overlay.MaxRecords != 0 {
		c.MaxRecords = overlay.MaxRecords
	}
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}
}

func (c *CategoryConfig) finalize(name, defaultTTL string) error {
	if c.CacheTTL == "" {
		c.CacheTTL = defaultTTL
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("%s: invalid cache_ttl: %w", name, err)
	}
	if c.MaxRecords < 0 {
		return fmt.Errorf("%s: max_records must not be negative", name)
	}
	return nil
}

// CollectConfig holds the ingestion run parameters across all categories.
type CollectConfig struct {
	// Year scopes every category to one legislative year.
	Year int `toml:"year"`
	// FailureThreshold is the fraction of failed records above which a run
	// is reported as failed rather than merely warned.
	FailureThreshold float64 `toml:"failure_threshold"`
	// ErrorSamples is the number of error examples retained per category report.
	ErrorSamples int `toml:"error_samples"`

	Parties      CategoryConfig `toml:"parties"`
	Legislators  CategoryConfig `toml:"legislators"`
	Expenditures CategoryConfig `toml:"expenditures"`
	Amendments   CategoryConfig `toml:"amendments"`
	Proposals    CategoryConfig `toml:"proposals"`
	Votes        CategoryConfig `toml:"votes"`

	// ExpenditureMonths limits expenditure collection to specific months.
	// Empty means all twelve.
	ExpenditureMonths []int `toml:"expenditure_months"`
	// ExpenditureMinValue drops expenditure records below this net value.
	ExpenditureMinValue float64 `toml:"expenditure_min_value"`
	// ProposalTypes restricts proposal collection to these type codes.
	ProposalTypes []string `toml:"proposal_types"`
	// DocumentTypes lists the proposal types whose full-text document is
	// fetched and archived. Empty disables document capture.
	DocumentTypes []string `toml:"document_types"`
}

// Merge overwrites non-zero fields from overlay.
func (c *CollectConfig) Merge(overlay *CollectConfig) {
	if overlay.Year != 0 {
		c.Year = overlay.Year
	}
	if overlay.FailureThreshold != 0 {
		c.FailureThreshold = overlay.FailureThreshold
	}
	if overlay.ErrorSamples != 0 {
		c.ErrorSamples = overlay.ErrorSamples
	}
	c.Parties.merge(&overlay.Parties)
	c.Legislators.merge(&overlay.Legislators)
	c.Expenditures.merge(&overlay.Expenditures)
	c.Amendments.merge(&overlay.Amendments)
	c.Proposals.merge(&overlay.Proposals)
	c.Votes.merge(&overlay.Votes)
	if len(overlay.ExpenditureMonths) > 0 {
		c.ExpenditureMonths = overlay.ExpenditureMonths
	}
	if overlay.ExpenditureMinValue != 0 {
		c.ExpenditureMinValue = overlay.ExpenditureMinValue
	}
	if len(overlay.ProposalTypes) > 0 {
		c.ProposalTypes = overlay.ProposalTypes
	}
	if len(overlay.DocumentTypes) > 0 {
		c.DocumentTypes = overlay.DocumentTypes
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CollectConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *CollectConfig) loadDefaults() {
	if c.Year == 0 {
		c.Year = time.Now().Year()
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 0.25
	}
	if c.ErrorSamples == 0 {
		c.ErrorSamples = 10
	}
	if c.ExpenditureMinValue == 0 {
		c.ExpenditureMinValue = 0.01
	}
	if len(c.ProposalTypes) == 0 {
		c.ProposalTypes = []string{"PL", "PEC", "PLP", "MPV", "PDC", "PLV", "PRC"}
	}
	if len(c.DocumentTypes) == 0 {
		c.DocumentTypes = []string{"PL", "PEC", "PLP", "MPV"}
	}

	// Reference data changes slowly; expenditures move daily.
	ttls := []struct {
		cfg        *CategoryConfig
		defaultTTL string
	}{
		{&c.Parties, "24h"},
		{&c.Legislators, "24h"},
		{&c.Expenditures, "2h"},
		{&c.Amendments, "6h"},
		{&c.Proposals, "6h"},
		{&c.Votes, "2h"},
	}
	for _, t := range ttls {
		if t.cfg.CacheTTL == "" {
			t.cfg.CacheTTL = t.defaultTTL
		}
	}
}

func (c *CollectConfig) loadEnv() {
	if v := os.Getenv(EnvCollectYear); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Year = n
		}
	}
	if v := os.Getenv(EnvCollectFailureThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.FailureThreshold = f
		}
	}
}

func (c *CollectConfig) validate() error {
	if c.Year < 1988 {
		return fmt.Errorf("year %d predates the current constitution", c.Year)
	}
	if c.FailureThreshold < 0 || c.FailureThreshold > 1 {
		return fmt.Errorf("failure_threshold must be within [0,1]")
	}
	for _, m := range c.ExpenditureMonths {
		if m < 1 || m > 12 {
			return fmt.Errorf("invalid expenditure month %d", m)
		}
	}

	categories := []struct {
		name string
		cfg  *CategoryConfig
		ttl  string
	}{
		{"parties", &c.Parties, "24h"},
		{"legislators", &c.Legislators, "24h"},
		{"expenditures", &c.Expenditures, "2h"},
		{"amendments", &c.Amendments, "6h"},
		{"proposals", &c.Proposals, "6h"},
		{"votes", &c.Votes, "2h"},
	}
	for _, cat := range categories {
		if err := cat.cfg.finalize(cat.name, cat.ttl); err != nil {
			return err
		}
	}
	return nil
}
