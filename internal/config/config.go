// Package config loads and finalizes the Tribuna service configuration.
// A base config.toml is merged with an optional environment overlay
// (config.<env>.toml selected by TRIBUNA_ENV), then every section applies
// defaults, environment variable overrides, and validation.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/tribuna-project/tribuna/pkg/archive"
	"github.com/tribuna-project/tribuna/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvTribunaEnv             = "TRIBUNA_ENV"
	EnvTribunaShutdownTimeout = "TRIBUNA_SHUTDOWN_TIMEOUT"
	EnvTribunaVersion         = "TRIBUNA_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "TRIBUNA_DB_HOST",
	Port:            "TRIBUNA_DB_PORT",
	Name:            "TRIBUNA_DB_NAME",
	User:            "TRIBUNA_DB_USER",
	Password:        "TRIBUNA_DB_PASSWORD",
	SSLMode:         "TRIBUNA_DB_SSL_MODE",
	MaxOpenConns:    "TRIBUNA_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "TRIBUNA_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "TRIBUNA_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "TRIBUNA_DB_CONN_TIMEOUT",
}

var archiveEnv = &archive.Env{
	ContainerName:    "TRIBUNA_ARCHIVE_CONTAINER_NAME",
	ConnectionString: "TRIBUNA_ARCHIVE_CONNECTION_STRING",
}

// Config is the root configuration for the Tribuna service.
type Config struct {
	Database        database.Config   `toml:"database"`
	Archive         archive.Config    `toml:"archive"`
	Sources         SourcesConfig     `toml:"sources"`
	Collect         CollectConfig     `toml:"collect"`
	Analysis        AnalysisConfig    `toml:"analysis"`
	Methodology     MethodologyConfig `toml:"methodology"`
	Scheduler       SchedulerConfig   `toml:"scheduler"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the TRIBUNA_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvTribunaEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Database.Merge(&overlay.Database)
	c.Archive.Merge(&overlay.Archive)
	c.Sources.Merge(&overlay.Sources)
	c.Collect.Merge(&overlay.Collect)
	c.Analysis.Merge(&overlay.Analysis)
	c.Methodology.Merge(&overlay.Methodology)
	c.Scheduler.Merge(&overlay.Scheduler)
}

// Finalize applies defaults, environment overrides, and validation to every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Archive.Finalize(archiveEnv); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := c.Sources.Finalize(); err != nil {
		return fmt.Errorf("sources: %w", err)
	}
	if err := c.Collect.Finalize(); err != nil {
		return fmt.Errorf("collect: %w", err)
	}
	if err := c.Analysis.Finalize(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if err := c.Methodology.Finalize(); err != nil {
		return fmt.Errorf("methodology: %w", err)
	}
	if err := c.Scheduler.Finalize(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "dev"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvTribunaShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvTribunaVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

func overlayPath() string {
	env := os.Getenv(EnvTribunaEnv)
	if env == "" {
		return ""
	}

	path := fmt.Sprintf(OverlayConfigPattern, env)
	if _, err := os.Stat(path); err != nil {
		return ""
	}

	return path
}
