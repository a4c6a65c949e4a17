package fetch

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Pagination conventions supported by the paginator.
const (
	PaginationPage   = "page"   // pagina/itens query parameters
	PaginationOffset = "offset" // offset/limit query parameters
)

// Config holds the parameters for one external paginated source.
// Nothing here is hard-coded per call site: base URL, pacing delay, timeout,
// retry bound, and pagination convention are all externally supplied.
type Config struct {
	BaseURL    string `toml:"base_url"`
	MinDelay   string `toml:"min_delay"`
	Timeout    string `toml:"timeout"`
	MaxRetries int    `toml:"max_retries"`
	UserAgent  string `toml:"user_agent"`
	PageSize   int    `toml:"page_size"`
	Pagination string `toml:"pagination"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL    string
	MinDelay   string
	Timeout    string
	MaxRetries string
}

// MinDelayDuration returns MinDelay as a time.Duration.
func (c *Config) MinDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.MinDelay)
	return d
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.MinDelay != "" {
		c.MinDelay = overlay.MinDelay
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.UserAgent != "" {
		c.UserAgent = overlay.UserAgent
	}
	if overlay.PageSize != 0 {
		c.PageSize = overlay.PageSize
	}
	if overlay.Pagination != "" {
		c.Pagination = overlay.Pagination
	}
}

func (c *Config) loadDefaults() {
	if c.MinDelay == "" {
		c.MinDelay = "300ms"
	}
	if c.Timeout == "" {
		c.Timeout = "15s"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.UserAgent == "" {
		c.UserAgent = "tribuna/1.0"
	}
	if c.PageSize == 0 {
		c.PageSize = 100
	}
	if c.Pagination == "" {
		c.Pagination = PaginationPage
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.MinDelay != "" {
		if v := os.Getenv(env.MinDelay); v != "" {
			c.MinDelay = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.MaxRetries != "" {
		if v := os.Getenv(env.MaxRetries); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxRetries = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if _, err := time.ParseDuration(c.MinDelay); err != nil {
		return fmt.Errorf("invalid min_delay: %w", err)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.Pagination != PaginationPage && c.Pagination != PaginationOffset {
		return fmt.Errorf("pagination must be %q or %q", PaginationPage, PaginationOffset)
	}
	return nil
}
