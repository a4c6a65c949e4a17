// Package pipeline orchestrates collection, analysis, and scoring as one
// dependency-ordered run, and persists the outcome of every run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tribuna-project/tribuna/internal/ingest"
)

// Collector is one data category's collection pass.
type Collector interface {
	Category() string
	Collect(ctx context.Context) *ingest.Report
}

// Stage is a function producing one report, used for the analysis and
// scoring steps that are not page-oriented collectors.
type Stage func(ctx context.Context) *ingest.Report

// Statuses of a completed run.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Options configure run evaluation.
type Options struct {
	// FailureThreshold is the per-category failed-plus-skipped fraction
	// above which the whole run is marked failed.
	FailureThreshold float64
}

// Pipeline runs the full refresh: reference data, then the independent
// categories concurrently, then votes, analysis, and scoring. Later stages
// run even when earlier categories degrade; the run status reflects it.
type Pipeline struct {
	reference   []Collector
	independent []Collector
	dependent   []Collector
	analysis    Stage
	scoring     Stage
	runs        *RunRepository
	opts        Options
	logger      *slog.Logger
}

// New creates a pipeline. Reference collectors run sequentially first,
// independent collectors run concurrently, dependent collectors run after
// them, then the analysis and scoring stages.
func New(
	reference []Collector,
	independent []Collector,
	dependent []Collector,
	analysis Stage,
	scoring Stage,
	runs *RunRepository,
	opts Options,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		reference:   reference,
		independent: independent,
		dependent:   dependent,
		analysis:    analysis,
		scoring:     scoring,
		runs:        runs,
		opts:        opts,
		logger:      logger.With("system", "pipeline"),
	}
}

// Run executes one full pass and persists its report. The returned Run is
// always non-nil; the error covers run persistence only.
func (p *Pipeline) Run(ctx context.Context) (*Run, error) {
	run := &Run{StartedAt: time.Now().UTC()}
	p.logger.Info("run started")

	for _, collector := range p.reference {
		run.Append(p.collect(ctx, collector))
		if ctx.Err() != nil {
			break
		}
	}

	if ctx.Err() == nil {
		run.Append(p.concurrent(ctx)...)
	}

	if ctx.Err() == nil {
		for _, collector := range p.dependent {
			run.Append(p.collect(ctx, collector))
		}
	}

	if ctx.Err() == nil && p.analysis != nil {
		run.Append(p.analysis(ctx))
	}
	if ctx.Err() == nil && p.scoring != nil {
		run.Append(p.scoring(ctx))
	}

	run.Finish(p.opts.FailureThreshold, ctx.Err())
	p.logger.Info("run finished", "status", run.Status, "categories", len(run.Reports))

	if p.runs != nil {
		if err := p.runs.Save(ctx, run); err != nil {
			return run, fmt.Errorf("persisting run report: %w", err)
		}
	}
	return run, nil
}

func (p *Pipeline) collect(ctx context.Context, collector Collector) *ingest.Report {
	p.logger.Info("collecting", "category", collector.Category())
	report := collector.Collect(ctx)
	p.logger.Info("collected",
		"category", report.Category,
		"fetched", report.Counts.Fetched,
		"upserted", report.Counts.Upserted(),
		"skipped", report.Counts.Skipped,
		"failed", report.Counts.Failed,
	)
	return report
}

// concurrent runs the independent collectors in parallel. Each collector
// already contains its failures in its report, so the group never errors.
func (p *Pipeline) concurrent(ctx context.Context) []*ingest.Report {
	var (
		mu      sync.Mutex
		reports []*ingest.Report
	)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, collector := range p.independent {
		collector := collector
		group.Go(func() error {
			report := p.collect(groupCtx, collector)
			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	return reports
}
