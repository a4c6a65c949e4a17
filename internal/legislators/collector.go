package legislators

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
	"github.com/tribuna-project/tribuna/internal/parties"
	"github.com/tribuna-project/tribuna/pkg/archive"
	"github.com/tribuna-project/tribuna/pkg/fetch"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

const category = "legislators"

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
	Upsert(ctx context.Context, l Legislator) (repository.Outcome, error)
}

// PartyDirectory resolves party memberships against the reference table.
type PartyDirectory interface {
	FindByAbbreviation(ctx context.Context, abbreviation string) (*parties.Party, error)
}

// Collector ingests legislators currently in exercise from the chamber API.
// Party membership resolves against the parties reference table; an unknown
// abbreviation leaves the membership null rather than skipping the record.
type Collector struct {
	client  *fetch.Client
	store   archive.System
	repo    Store
	parties PartyDirectory
	opts    CollectorOptions
	logger  *slog.Logger
}

// NewCollector creates a legislator collector.
func NewCollector(
	client *fetch.Client,
	store archive.System,
	repo Store,
	partyRepo PartyDirectory,
	opts CollectorOptions,
	logger *slog.Logger,
) *Collector {
	return &Collector{
		client:  client,
		store:   store,
		repo:    repo,
		parties: partyRepo,
		opts:    opts,
		logger:  logger.With("collector", category),
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
	params.Set("ordem", "ASC")
	params.Set("ordenarPor", "nome")

	opts := fetch.PageOptions{
		Convention: c.opts.Convention,
		PageSize:   c.opts.PageSize,
		MaxRecords: c.opts.MaxRecords,
		CacheTTL:   c.opts.CacheTTL,
	}

	err := c.client.Paginate(ctx, "/deputados", params, opts, func(payload *fetch.Payload, page int) (int, error) {
		records, err := ingest.Records(payload.Body)
		if err != nil {
			return 0, err
		}
		report.RecordFetched(len(records))
		c.archivePage(ctx, report, page, payload.Body)

		for _, raw := range records {
			mapped, err := Map(raw)
			if err != nil {
				c.logger.Warn("record skipped", "error", err)
				report.RecordSkip(err)
				continue
			}

			mapped.Legislator.PartyID = c.resolveParty(ctx, mapped.PartyAbbreviation)

			outcome, err := c.repo.Upsert(ctx, mapped.Legislator)
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

func (c *Collector) resolveParty(ctx context.Context, abbreviation string) *uuid.UUID {
	if abbreviation == "" {
		return nil
	}

	party, err := c.parties.FindByAbbreviation(ctx, abbreviation)
	if err != nil {
		if !errors.Is(err, parties.ErrNotFound) {
			c.logger.Warn("party lookup failed", "abbreviation", abbreviation, "error", err)
		}
		return nil
	}
	return &party.ID
}

func (c *Collector) archivePage(ctx context.Context, report *ingest.Report, page int, body []byte) {
	identity := fmt.Sprintf("deputados-p%04d", page)
	if _, err := c.store.Store(ctx, category, strconv.Itoa(c.opts.Year), identity, body); err != nil {
		c.logger.Warn("archive failed", "identity", identity, "error", err)
		return
	}
	report.RecordArchived()
}
