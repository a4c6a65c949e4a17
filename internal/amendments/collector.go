package amendments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/internal/legislators"
	"github.com/tribuna-project/tribuna/pkg/archive"
	"github.com/tribuna-project/tribuna/pkg/fetch"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

const category = "amendments"

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
	Upsert(ctx context.Context, a Amendment) (repository.Outcome, error)
}

// Directory resolves amendment authors to legislators by name.
type Directory interface {
	FindByName(ctx context.Context, name string) (*legislators.Legislator, error)
}

// Collector ingests budget amendments from the transparency portal. Authors
// are matched to legislators by name; an unmatched or committee author leaves
// the legislator link null.
type Collector struct {
	client      *fetch.Client
	store       archive.System
	repo        Store
	legislators Directory
	opts        CollectorOptions
	logger      *slog.Logger
}

// NewCollector creates an amendment collector.
func NewCollector(
	client *fetch.Client,
	store archive.System,
	repo Store,
	legislatorRepo Directory,
	opts CollectorOptions,
	logger *slog.Logger,
) *Collector {
	return &Collector{
		client:      client,
		store:       store,
		repo:        repo,
		legislators: legislatorRepo,
		opts:        opts,
		logger:      logger.With("collector", category),
	}
}

// Category returns the data category this collector owns.
func (c *Collector) Category() string {
	return category
}

// Collect runs one collection pass.
func (c *Collector) Collect(ctx context.Context) *ingest.Report {
	report := ingest.NewReport(category, c.opts.ErrorSamples)

	params := url.Values{}
	params.Set("ano", strconv.Itoa(c.opts.Year))

	opts := fetch.PageOptions{
		Convention: c.opts.Convention,
		PageSize:   c.opts.PageSize,
		MaxRecords: c.opts.MaxRecords,
		CacheTTL:   c.opts.CacheTTL,
	}

	err := c.client.Paginate(ctx, "/emendas", params, opts, func(payload *fetch.Payload, page int) (int, error) {
		records, err := ingest.Records(payload.Body)
		if err != nil {
			return 0, err
		}
		report.RecordFetched(len(records))
		c.archivePage(ctx, report, page, payload.Body)

		for _, raw := range records {
			amendment, err := Map(raw)
			if err != nil {
				c.logger.Warn("record skipped", "error", err)
				report.RecordSkip(err)
				continue
			}

			amendment.LegislatorID = c.resolveAuthor(ctx, amendment.AuthorName)

			outcome, err := c.repo.Upsert(ctx, amendment)
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

func (c *Collector) resolveAuthor(ctx context.Context, name string) *uuid.UUID {
	if name == "" {
		return nil
	}

	legislator, err := c.legislators.FindByName(ctx, name)
	if err != nil {
		if !errors.Is(err, legislators.ErrNotFound) {
			c.logger.Warn("author lookup failed", "name", name, "error", err)
		}
		return nil
	}
	return &legislator.ID
}

func (c *Collector) archivePage(ctx context.Context, report *ingest.Report, page int, body []byte) {
	identity := fmt.Sprintf("emendas-p%04d", page)
	if _, err := c.store.Store(ctx, category, strconv.Itoa(c.opts.Year), identity, body); err != nil {
		c.logger.Warn("archive failed", "identity", identity, "error", err)
		return
	}
	report.RecordArchived()
}
