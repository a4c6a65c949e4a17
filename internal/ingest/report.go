// Package ingest holds the shared vocabulary of the collection pipeline:
// per-category run reports, record counters, and mapping failures. Domain
// collectors record into a Report; the pipeline aggregates and persists them.
package ingest

import (
	"fmt"
	"sync"
	"time"

	"github.com/tribuna-project/tribuna/pkg/repository"
)

// Counts tallies record dispositions for one category within one run.
type Counts struct {
	Fetched   int `json:"fetched"`
	Archived  int `json:"archived"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Upserted returns the number of records that reached the store.
func (c Counts) Upserted() int {
	return c.Inserted + c.Updated + c.Unchanged
}

// Total returns the number of records seen.
func (c Counts) Total() int {
	return c.Upserted() + c.Skipped + c.Failed
}

// Report is the outcome of one category's collection pass. A non-nil Aborted
// means a page-level failure halted the collector early; records committed
// before that point stay committed. Recording methods are safe for use from
// concurrent workers.
type Report struct {
	Category     string    `json:"category"`
	Counts       Counts    `json:"counts"`
	ErrorSamples []string  `json:"error_samples,omitempty"`
	Aborted      string    `json:"aborted,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`

	mu         sync.Mutex
	maxSamples int
}

// NewReport creates a report for category retaining at most maxSamples
// error examples.
func NewReport(category string, maxSamples int) *Report {
	return &Report{
		Category:   category,
		StartedAt:  time.Now().UTC(),
		maxSamples: maxSamples,
	}
}

// RecordFetched counts a fetched page of n records.
func (r *Report) RecordFetched(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.Fetched += n
}

// RecordArchived counts one archived payload.
func (r *Report) RecordArchived() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.Archived++
}

// RecordOutcome counts one upsert disposition.
func (r *Report) RecordOutcome(o repository.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch o {
	case repository.Inserted:
		r.Counts.Inserted++
	case repository.Updated:
		r.Counts.Updated++
	case repository.Unchanged:
		r.Counts.Unchanged++
	}
}

// RecordSkip counts a skipped record and samples its error.
func (r *Report) RecordSkip(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.Skipped++
	r.sample(err)
}

// RecordFailure counts a failed record and samples its error.
func (r *Report) RecordFailure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts.Failed++
	r.sample(err)
}

// Abort marks the collector as halted by a page-level failure.
func (r *Report) Abort(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.Aborted = err.Error()
	}
}

// Finish stamps the completion time and returns the report.
func (r *Report) Finish() *Report {
	r.FinishedAt = time.Now().UTC()
	return r
}

// FailureFraction returns failed records as a fraction of all records seen.
// Skips are deliberate policy outcomes and do not count against the run.
// Zero totals report zero.
func (r *Report) FailureFraction() float64 {
	total := r.Counts.Total()
	if total == 0 {
		return 0
	}
	return float64(r.Counts.Failed) / float64(total)
}

func (r *Report) sample(err error) {
	if err == nil || len(r.ErrorSamples) >= r.maxSamples {
		return
	}
	r.ErrorSamples = append(r.ErrorSamples, fmt.Sprintf("%s: %v", r.Category, err))
}
