package pipeline

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/tribuna-project/tribuna/pkg/lifecycle"
)

// Scheduler triggers full pipeline runs on a cron spec. Runs do not overlap:
// a tick arriving while a run is in flight is dropped.
type Scheduler struct {
	pipeline *Pipeline
	spec     string
	cron     *cron.Cron
	running  chan struct{}
	logger   *slog.Logger
}

// NewScheduler creates a scheduler for the standard 5-field cron spec.
func NewScheduler(pipeline *Pipeline, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pipeline: pipeline,
		spec:     spec,
		cron:     cron.New(),
		running:  make(chan struct{}, 1),
		logger:   logger.With("system", "scheduler"),
	}
}

// Start registers the cron job and lifecycle hooks. Cancelling ctx stops new
// fetches in the active run promptly; Stop waits for it to wind down.
func (s *Scheduler) Start(ctx context.Context, lc *lifecycle.Coordinator) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		select {
		case s.running <- struct{}{}:
			defer func() { <-s.running }()
		default:
			s.logger.Warn("previous run still active, skipping tick")
			return
		}

		if _, err := s.pipeline.Run(ctx); err != nil {
			s.logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	lc.OnStartup(func() {
		s.cron.Start()
		s.logger.Info("scheduler started", "spec", s.spec)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.logger.Info("scheduler stopped")
	})

	return nil
}
