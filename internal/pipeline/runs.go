package pipeline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

// Run is the outcome of one full pipeline pass.
type Run struct {
	ID         uuid.UUID        `json:"id"`
	Status     string           `json:"status"`
	Reports    []*ingest.Report `json:"reports"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// Append adds stage reports to the run.
func (r *Run) Append(reports ...*ingest.Report) {
	r.Reports = append(r.Reports, reports...)
}

// Finish stamps the run and evaluates its status: failed when cancelled, when
// any category aborted, or when any category's failure fraction exceeds the
// threshold.
func (r *Run) Finish(failureThreshold float64, cause error) {
	r.FinishedAt = time.Now().UTC()
	r.Status = StatusSucceeded

	if cause != nil {
		r.Status = StatusFailed
		r.Error = cause.Error()
		return
	}

	for _, report := range r.Reports {
		if report.Aborted != "" {
			r.Status = StatusFailed
			r.Error = fmt.Sprintf("%s aborted: %s", report.Category, report.Aborted)
			return
		}
		if fraction := report.FailureFraction(); fraction > failureThreshold {
			r.Status = StatusFailed
			r.Error = fmt.Sprintf("%s failure fraction %.2f exceeds threshold %.2f",
				report.Category, fraction, failureThreshold)
			return
		}
	}
}

// RunRepository persists run reports.
type RunRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRunRepository creates a run report repository.
func NewRunRepository(db *sql.DB, logger *slog.Logger) *RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger.With("system", "runs"),
	}
}

// Save writes one completed run with its category reports as JSON.
func (r *RunRepository) Save(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	reports, err := json.Marshal(run.Reports)
	if err != nil {
		return fmt.Errorf("encoding run reports: %w", err)
	}

	q := `
		INSERT INTO ingestion_runs(id, status, reports, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	args := []any{run.ID, run.Status, reports, run.Error, run.StartedAt, run.FinishedAt}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return repository.Translate(err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]Run, error) {
	q := `
		SELECT id, status, reports, error, started_at, finished_at
		FROM ingestion_runs
		ORDER BY started_at DESC
		LIMIT $1`

	return repository.QueryMany(ctx, r.db, q, []any{limit}, func(s repository.Scanner) (Run, error) {
		var (
			run     Run
			reports []byte
		)
		if err := s.Scan(&run.ID, &run.Status, &reports, &run.Error, &run.StartedAt, &run.FinishedAt); err != nil {
			return Run{}, err
		}
		if err := json.Unmarshal(reports, &run.Reports); err != nil {
			return Run{}, fmt.Errorf("decoding run reports: %w", err)
		}
		return run, nil
	})
}
