package ingest_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

func TestCountsTotals(t *testing.T) {
	counts := ingest.Counts{
		Inserted:  3,
		Updated:   2,
		Unchanged: 5,
		Skipped:   1,
		Failed:    4,
	}

	if got := counts.Upserted(); got != 10 {
		t.Errorf("upserted got %d, want 10", got)
	}
	if got := counts.Total(); got != 15 {
		t.Errorf("total got %d, want 15", got)
	}
}

func TestReportRecordsOutcomes(t *testing.T) {
	report := ingest.NewReport("parties", 5)

	report.RecordFetched(4)
	report.RecordArchived()
	report.RecordOutcome(repository.Inserted)
	report.RecordOutcome(repository.Updated)
	report.RecordOutcome(repository.Unchanged)
	report.RecordSkip(errors.New("missing abbreviation"))
	report.RecordFailure(errors.New("write failed"))

	report.Finish()

	if report.Counts.Fetched != 4 {
		t.Errorf("fetched got %d, want 4", report.Counts.Fetched)
	}
	if report.Counts.Archived != 1 {
		t.Errorf("archived got %d, want 1", report.Counts.Archived)
	}
	if report.Counts.Upserted() != 3 {
		t.Errorf("upserted got %d, want 3", report.Counts.Upserted())
	}
	if report.Counts.Skipped != 1 || report.Counts.Failed != 1 {
		t.Errorf("skipped/failed got %d/%d, want 1/1", report.Counts.Skipped, report.Counts.Failed)
	}
	if len(report.ErrorSamples) != 2 {
		t.Errorf("samples got %d, want 2", len(report.ErrorSamples))
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("finished before started")
	}
}

func TestReportBoundsErrorSamples(t *testing.T) {
	report := ingest.NewReport("votes", 2)

	for i := 0; i < 10; i++ {
		report.RecordFailure(errors.New("boom"))
	}

	if got := len(report.ErrorSamples); got != 2 {
		t.Errorf("samples got %d, want 2", got)
	}
	if report.Counts.Failed != 10 {
		t.Errorf("failed got %d, want 10", report.Counts.Failed)
	}
}

func TestReportAbort(t *testing.T) {
	report := ingest.NewReport("proposals", 5)

	report.Abort(errors.New("page 3 fetch failed"))

	if report.Aborted == "" {
		t.Error("expected aborted cause")
	}

	fresh := ingest.NewReport("proposals", 5)
	fresh.Abort(nil)
	if fresh.Aborted != "" {
		t.Errorf("nil cause set aborted to %q", fresh.Aborted)
	}
}

func TestFailureFraction(t *testing.T) {
	tests := []struct {
		name     string
		counts   ingest.Counts
		expected float64
	}{
		{
			name:     "empty report",
			counts:   ingest.Counts{},
			expected: 0,
		},
		{
			name:     "eighth failed",
			counts:   ingest.Counts{Inserted: 6, Skipped: 1, Failed: 1},
			expected: 0.125,
		},
		{
			name:     "skips alone do not count",
			counts:   ingest.Counts{Inserted: 7, Skipped: 3},
			expected: 0,
		},
		{
			name:     "all failed",
			counts:   ingest.Counts{Failed: 3},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := ingest.NewReport("x", 0)
			report.Counts = tt.counts
			if got := report.FailureFraction(); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReportConcurrentRecording(t *testing.T) {
	report := ingest.NewReport("expenditures", 4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				report.RecordOutcome(repository.Inserted)
				report.RecordFailure(errors.New("x"))
			}
		}()
	}
	wg.Wait()

	if report.Counts.Inserted != 400 {
		t.Errorf("inserted got %d, want 400", report.Counts.Inserted)
	}
	if report.Counts.Failed != 400 {
		t.Errorf("failed got %d, want 400", report.Counts.Failed)
	}
}
