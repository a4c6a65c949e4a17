// Package infrastructure provides core service initialization for application
// startup. It assembles the dependencies every collector and scoring system
// requires: lifecycle coordination, logging, the relational store, the raw
// payload archive, and one paced fetch client per external source.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tribuna-project/tribuna/internal/config"
	"github.com/tribuna-project/tribuna/pkg/archive"
	"github.com/tribuna-project/tribuna/pkg/database"
	"github.com/tribuna-project/tribuna/pkg/fetch"
	"github.com/tribuna-project/tribuna/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// Chamber and Treasury each carry their own pacing gate; the response cache
// is shared across sources because keys embed the full endpoint.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Archive   archive.System
	Chamber   *fetch.Client
	Treasury  *fetch.Client
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := archive.New(&cfg.Archive, logger)
	if err != nil {
		return nil, fmt.Errorf("archive init failed: %w", err)
	}

	cache := fetch.NewCache()

	chamber, err := fetch.NewClient(
		&cfg.Sources.Chamber,
		fetch.NewPacer(cfg.Sources.Chamber.MinDelayDuration()),
		cache,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("chamber client init failed: %w", err)
	}

	treasury, err := fetch.NewClient(
		&cfg.Sources.Treasury,
		fetch.NewPacer(cfg.Sources.Treasury.MinDelayDuration()),
		cache,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("treasury client init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Archive:   store,
		Chamber:   chamber,
		Treasury:  treasury,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Archive.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("archive start failed: %w", err)
	}
	return nil
}
