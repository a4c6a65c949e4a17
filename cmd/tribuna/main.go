// Command tribuna ingests public legislative records, analyzes proposal
// relevance, and computes composite performance scores.
//
// Usage:
//
//	tribuna [collect|analyze|score|run|serve]
//
// collect ingests all categories; analyze drains pending proposals through
// the relevance model; score recomputes composite indices; run does all
// three; serve schedules full runs on the configured cron spec. The default
// is run.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tribuna-project/tribuna/internal/config"
	"github.com/tribuna-project/tribuna/internal/infrastructure"
	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/internal/pipeline"
)

func main() {
	command := "run"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if err := execute(command); err != nil {
		slog.Error("tribuna failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func execute(command string) error {
	switch command {
	case "collect", "analyze", "score", "run", "serve":
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return fmt.Errorf("initializing infrastructure: %w", err)
	}
	if err := infra.Start(); err != nil {
		return fmt.Errorf("starting infrastructure: %w", err)
	}

	app := newApplication(cfg, infra)
	lc := infra.Lifecycle

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if command == "serve" {
		if cfg.Scheduler.Disabled {
			return fmt.Errorf("serve requires the scheduler to be enabled")
		}
		if err := app.scheduler().Start(ctx, lc); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
	}

	lc.WaitForStartup()
	infra.Logger.Info("startup complete", "version", cfg.Version, "command", command)

	if command == "serve" {
		logRunHistory(ctx, app, infra.Logger)
	}

	runErr := dispatch(ctx, command, app, infra)

	if err := lc.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		infra.Logger.Error("shutdown incomplete", "error", err)
	}
	return runErr
}

func dispatch(ctx context.Context, command string, app *application, infra *infrastructure.Infrastructure) error {
	switch command {
	case "collect":
		return evaluateRun(app.collectOnly(ctx))
	case "analyze":
		return evaluateReport(app.analysis.ProcessPending(ctx))
	case "score":
		if err := evaluateReport(app.scoring.ScoreAll(ctx)); err != nil {
			return err
		}
		return logRanking(ctx, app, infra.Logger)
	case "run":
		return evaluateRun(app.fullRun(ctx))
	case "serve":
		<-ctx.Done()
		infra.Logger.Info("shutdown signal received")
		return nil
	}
	return nil
}

// logRunHistory surfaces the latest pipeline outcomes when the scheduler
// starts, so operators can tell at a glance whether recent runs were healthy.
func logRunHistory(ctx context.Context, app *application, logger *slog.Logger) {
	runs, err := app.runs.Recent(ctx, 5)
	if err != nil {
		logger.Warn("run history unavailable", "error", err)
		return
	}

	for _, run := range runs {
		logger.Info("previous run", "id", run.ID, "status", run.Status, "finished_at", run.FinishedAt)
	}
}

// logRanking reports the stored standings after a scoring pass.
func logRanking(ctx context.Context, app *application, logger *slog.Logger) error {
	scores, err := app.scoring.Ranking(ctx)
	if err != nil {
		return fmt.Errorf("reading ranking: %w", err)
	}
	if len(scores) == 0 {
		logger.Info("no scores stored")
		return nil
	}

	logger.Info("scoring complete", "legislators", len(scores), "top_index", scores[0].Index)
	return nil
}

func evaluateRun(run *pipeline.Run, err error) error {
	if err != nil {
		return err
	}
	if run.Status == pipeline.StatusFailed {
		return fmt.Errorf("run failed: %s", run.Error)
	}
	return nil
}

func evaluateReport(report *ingest.Report) error {
	if report.Aborted != "" {
		return fmt.Errorf("%s aborted: %s", report.Category, report.Aborted)
	}
	return nil
}
