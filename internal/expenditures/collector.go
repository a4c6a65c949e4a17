package expenditures

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/internal/legislators"
	"github.com/tribuna-project/tribuna/pkg/archive"
	"github.com/tribuna-project/tribuna/pkg/fetch"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

const category = "expenditures"

// CollectorOptions configure one collection pass. Convention selects the
// source's pagination parameter style.
type CollectorOptions struct {
	Convention   string
	PageSize     int
	MaxRecords   int
	CacheTTL     time.Duration
	Year         int
	Months       []int
	MinValue     float64
	ErrorSamples int
}

// Store is the persistence surface the collector writes through.
type Store interface {
	Upsert(ctx context.Context, e Expenditure) (repository.Outcome, error)
}

// Roster lists the legislators whose expense endpoints get walked.
type Roster interface {
	Refs(ctx context.Context) ([]legislators.Ref, error)
}

// Collector ingests quota expenditures per legislator. It iterates every
// known legislator and pages through that legislator's expense endpoint, so
// the legislators collector must have run first.
type Collector struct {
	client      *fetch.Client
	store       archive.System
	repo        Store
	legislators Roster
	opts        CollectorOptions
	logger      *slog.Logger
}

// NewCollector creates an expenditure collector.
func NewCollector(
	client *fetch.Client,
	store archive.System,
	repo Store,
	legislatorRepo Roster,
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

// Collect runs one collection pass across all known legislators.
func (c *Collector) Collect(ctx context.Context) *ingest.Report {
	report := ingest.NewReport(category, c.opts.ErrorSamples)

	refs, err := c.legislators.Refs(ctx)
	if err != nil {
		report.Abort(fmt.Errorf("listing legislators: %w", err))
		return report.Finish()
	}
	if len(refs) == 0 {
		report.Abort(fmt.Errorf("no legislators ingested yet"))
		return report.Finish()
	}

	for _, ref := range refs {
		if err := c.collectLegislator(ctx, report, ref); err != nil {
			c.logger.Error("collection aborted", "legislator", ref.ExternalID, "error", err)
			report.Abort(err)
			break
		}
	}

	return report.Finish()
}

func (c *Collector) collectLegislator(ctx context.Context, report *ingest.Report, ref legislators.Ref) error {
	params := url.Values{}
	params.Set("ano", strconv.Itoa(c.opts.Year))
	for _, month := range c.opts.Months {
		params.Add("mes", strconv.Itoa(month))
	}
	params.Set("ordem", "ASC")
	params.Set("ordenarPor", "mes")

	opts := fetch.PageOptions{
		Convention: c.opts.Convention,
		PageSize:   c.opts.PageSize,
		MaxRecords: c.opts.MaxRecords,
		CacheTTL:   c.opts.CacheTTL,
	}

	path := fmt.Sprintf("/deputados/%d/despesas", ref.ExternalID)

	return c.client.Paginate(ctx, path, params, opts, func(payload *fetch.Payload, page int) (int, error) {
		records, err := ingest.Records(payload.Body)
		if err != nil {
			return 0, err
		}
		report.RecordFetched(len(records))
		c.archivePage(ctx, report, ref.ExternalID, page, payload.Body)

		for _, raw := range records {
			exp, err := Map(raw)
			if err != nil {
				c.logger.Warn("record skipped", "legislator", ref.ExternalID, "error", err)
				report.RecordSkip(err)
				continue
			}
			if exp.NetValue < c.opts.MinValue {
				report.RecordSkip(ErrBelowMinimum)
				continue
			}
			exp.LegislatorID = ref.ID

			outcome, err := c.repo.Upsert(ctx, exp)
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
}

func (c *Collector) archivePage(ctx context.Context, report *ingest.Report, externalID, page int, body []byte) {
	identity := fmt.Sprintf("despesas-%d-p%04d", externalID, page)
	if _, err := c.store.Store(ctx, category, strconv.Itoa(c.opts.Year), identity, body); err != nil {
		c.logger.Warn("archive failed", "identity", identity, "error", err)
		return
	}
	report.RecordArchived()
}
