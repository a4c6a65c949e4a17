package parties

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/pkg/archive"
	"github.com/tribuna-project/tribuna/pkg/fetch"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

const category = "parties"

// CollectorOptions configure one collection pass. Convention selects the
// source's pagination parameter style.
type CollectorOptions struct {
	Convention   string
	PageSize     int
	MaxRecords   int
	CacheTTL     time.Duration
	Year         int
	ErrorSamples int
}

// Store is the persistence surface the collector writes through.
type Store interface {
	Upsert(ctx context.Context, party Party) (repository.Outcome, error)
}

// Collector ingests parties from the chamber API: paginate, archive each raw
// page, map records, upsert.
type Collector struct {
	client *fetch.Client
	store  archive.System
	repo   Store
	opts   CollectorOptions
	logger *slog.Logger
}

// NewCollector creates a party collector.
func NewCollector(client *fetch.Client, store archive.System, repo Store, opts CollectorOptions, logger *slog.Logger) *Collector {
	return &Collector{
		client: client,
		store:  store,
		repo:   repo,
		opts:   opts,
		logger: logger.With("collector", category),
	}
}

// Category returns the data category this collector owns.
func (c *Collector) Category() string {
	return category
}

// Collect runs one collection pass. A page-level fetch failure aborts the
// remaining pages and is reported; per-record mapping failures only skip
// that record.
func (c *Collector) Collect(ctx context.Context) *ingest.Report {
	report := ingest.NewReport(category, c.opts.ErrorSamples)

	params := url.Values{}
	params.Set("ordem", "ASC")
	params.Set("ordenarPor", "sigla")

	opts := fetch.PageOptions{
		Convention: c.opts.Convention,
		PageSize:   c.opts.PageSize,
		MaxRecords: c.opts.MaxRecords,
		CacheTTL:   c.opts.CacheTTL,
	}

	err := c.client.Paginate(ctx, "/partidos", params, opts, func(payload *fetch.Payload, page int) (int, error) {
		records, err := ingest.Records(payload.Body)
		if err != nil {
			return 0, err
		}
		report.RecordFetched(len(records))
		c.archivePage(ctx, report, page, payload.Body)

		for _, raw := range records {
			party, err := Map(raw)
			if err != nil {
				c.logger.Warn("record skipped", "error", err)
				report.RecordSkip(err)
				continue
			}

			outcome, err := c.repo.Upsert(ctx, party)
			if err != nil {
				if ingest.FatalPersistence(err) {
					return 0, err
				}
				report.RecordFailure(err)
				continue
			}
			report.RecordOutcome(outcome)
		}

		return len(records), nil
	})
	if err != nil {
		c.logger.Error("collection aborted", "error", err)
		report.Abort(err)
	}

	return report.Finish()
}

func (c *Collector) archivePage(ctx context.Context, report *ingest.Report, page int, body []byte) {
	identity := fmt.Sprintf("partidos-p%04d", page)
	if _, err := c.store.Store(ctx, category, strconv.Itoa(c.opts.Year), identity, body); err != nil {
		c.logger.Warn("archive failed", "identity", identity, "error", err)
		return
	}
	report.RecordArchived()
}
