package config

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
)

const EnvSchedulerSpec = "TRIBUNA_SCHEDULER_SPEC"

// SchedulerConfig holds the periodic-refresh schedule for serve mode.
// Ingestion is batch, not streaming; the cron spec decides how often the
// full pipeline re-runs.
type SchedulerConfig struct {
	Spec     string `toml:"spec"`
	Disabled bool   `toml:"disabled"`
}

// Merge overwrites non-zero fields from overlay.
func (c *SchedulerConfig) Merge(overlay *SchedulerConfig) {
	if overlay.Spec != "" {
		c.Spec = overlay.Spec
	}
	if overlay.Disabled {
		c.Disabled = true
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *SchedulerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *SchedulerConfig) loadDefaults() {
	if c.Spec == "" {
		c.Spec = "0 3 * * *"
	}
}

func (c *SchedulerConfig) loadEnv() {
	if v := os.Getenv(EnvSchedulerSpec); v != "" {
		c.Spec = v
	}
}

func (c *SchedulerConfig) validate() error {
	if _, err := cron.ParseStandard(c.Spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", c.Spec, err)
	}
	return nil
}
