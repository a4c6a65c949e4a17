package proposals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/internal/legislators"
	"github.com/tribuna-project/tribuna/pkg/archive"
	"github.com/tribuna-project/tribuna/pkg/fetch"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

const category = "proposals"

// CollectorOptions configure one collection pass. Convention selects the
// source's pagination parameter style.
type CollectorOptions struct {
	Convention    string
	PageSize      int
	MaxRecords    int
	CacheTTL      time.Duration
	Year          int
	Kinds         []string
	DocumentKinds []string
	ErrorSamples  int
}

// Store is the persistence surface the collector writes through.
type Store interface {
	Upsert(ctx context.Context, p Proposal) (repository.Outcome, error)
	FindByExternalID(ctx context.Context, externalID int) (*Proposal, error)
	FindDocument(ctx context.Context, proposalID uuid.UUID) (*Document, error)
	UpsertDocument(ctx context.Context, d Document) (repository.Outcome, error)
}

// Directory resolves proposal authors to legislators by source ID.
type Directory interface {
	FindByExternalID(ctx context.Context, externalID int) (*legislators.Legislator, error)
}

// Collector ingests legislative proposals. Each list record costs two more
// calls (detail and authors) before it can be upserted, so proposal passes
// dominate the source's rate budget.
type Collector struct {
	client      *fetch.Client
	store       archive.System
	repo        Store
	legislators Directory
	opts        CollectorOptions
	logger      *slog.Logger
}

// NewCollector creates a proposal collector.
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

// Collect runs one collection pass across the configured proposal types.
func (c *Collector) Collect(ctx context.Context) *ingest.Report {
	report := ingest.NewReport(category, c.opts.ErrorSamples)

	params := url.Values{}
	params.Set("ano", strconv.Itoa(c.opts.Year))
	for _, kind := range c.opts.Kinds {
		params.Add("siglaTipo", kind)
	}
	params.Set("ordem", "ASC")
	params.Set("ordenarPor", "id")

	opts := fetch.PageOptions{
		Convention: c.opts.Convention,
		PageSize:   c.opts.PageSize,
		MaxRecords: c.opts.MaxRecords,
		CacheTTL:   c.opts.CacheTTL,
	}

	err := c.client.Paginate(ctx, "/proposicoes", params, opts, func(payload *fetch.Payload, page int) (int, error) {
		records, err := ingest.Records(payload.Body)
		if err != nil {
			return 0, err
		}
		report.RecordFetched(len(records))
		c.archivePage(ctx, report, page, payload.Body)

		for _, raw := range records {
			proposal, err := Map(raw)
			if err != nil {
				c.logger.Warn("record skipped", "error", err)
				report.RecordSkip(err)
				continue
			}

			if err := c.process(ctx, report, proposal); err != nil {
				return 0, err
			}
		}

		return len(records), nil
	})
	if err != nil {
		c.logger.Error("collection aborted", "error", err)
		report.Abort(err)
	}

	return report.Finish()
}

// process enriches, upserts, and optionally captures the document for one
// proposal. A non-nil return aborts the whole pass; record-level problems are
// recorded on the report instead.
func (c *Collector) process(ctx context.Context, report *ingest.Report, proposal Proposal) error {
	if err := c.enrich(ctx, &proposal); err != nil {
		if ctx.Err() != nil {
			return err
		}
		c.logger.Warn("detail fetch failed", "proposal", proposal.ExternalID, "error", err)
		report.RecordFailure(err)
		return nil
	}

	author, err := c.resolveAuthor(ctx, proposal.ExternalID)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		if errors.Is(err, ErrNoAuthor) || errors.Is(err, legislators.ErrNotFound) {
			report.RecordSkip(ErrNoAuthor)
			return nil
		}
		report.RecordFailure(err)
		return nil
	}
	proposal.LegislatorID = author.ID

	outcome, err := c.repo.Upsert(ctx, proposal)
	if err != nil {
		if ingest.FatalPersistence(err) {
			return err
		}
		report.RecordFailure(err)
		return nil
	}
	report.RecordOutcome(outcome)

	if slices.Contains(c.opts.DocumentKinds, proposal.Kind) {
		c.captureDocument(ctx, report, proposal)
	}
	return nil
}

// enrich folds the detail endpoint into the proposal.
func (c *Collector) enrich(ctx context.Context, proposal *Proposal) error {
	path := fmt.Sprintf("/proposicoes/%d", proposal.ExternalID)
	payload, err := c.client.Get(ctx, path, nil, c.opts.CacheTTL)
	if err != nil {
		return err
	}

	detail, err := ingest.Record(payload.Body)
	if err != nil {
		return err
	}
	return MapDetail(proposal, detail)
}

// resolveAuthor fetches the authors list and maps the first individual author
// to a known legislator.
func (c *Collector) resolveAuthor(ctx context.Context, externalID int) (*legislators.Legislator, error) {
	path := fmt.Sprintf("/proposicoes/%d/autores", externalID)
	payload, err := c.client.Get(ctx, path, nil, c.opts.CacheTTL)
	if err != nil {
		return nil, err
	}

	records, err := ingest.Records(payload.Body)
	if err != nil {
		return nil, err
	}

	authorID := AuthorExternalID(records)
	if authorID == 0 {
		return nil, ErrNoAuthor
	}
	return c.legislators.FindByExternalID(ctx, authorID)
}

func (c *Collector) archivePage(ctx context.Context, report *ingest.Report, page int, body []byte) {
	identity := fmt.Sprintf("proposicoes-p%04d", page)
	if _, err := c.store.Store(ctx, category, strconv.Itoa(c.opts.Year), identity, body); err != nil {
		c.logger.Warn("archive failed", "identity", identity, "error", err)
		return
	}
	report.RecordArchived()
}
