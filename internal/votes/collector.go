package votes

import (
	"context"
	"errors"
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

const category = "votes"

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
	Upsert(ctx context.Context, v Vote) (repository.Outcome, error)
}

// Directory resolves ballot casters to legislators by source ID.
type Directory interface {
	FindByExternalID(ctx context.Context, externalID int) (*legislators.Legislator, error)
}

// Collector ingests roll-call votes. It pages through the year's voting
// sessions and fetches each session's ballots; ballots from legislators not
// yet ingested are skipped.
type Collector struct {
	client      *fetch.Client
	store       archive.System
	repo        Store
	legislators Directory
	opts        CollectorOptions
	logger      *slog.Logger
}

// NewCollector creates a vote collector.
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

// Collect runs one collection pass over the year's voting sessions.
func (c *Collector) Collect(ctx context.Context) *ingest.Report {
	report := ingest.NewReport(category, c.opts.ErrorSamples)

	params := url.Values{}
	params.Set("dataInicio", fmt.Sprintf("%d-01-01", c.opts.Year))
	params.Set("dataFim", fmt.Sprintf("%d-12-31", c.opts.Year))
	params.Set("ordem", "ASC")
	params.Set("ordenarPor", "dataHoraRegistro")

	opts := fetch.PageOptions{
		Convention: c.opts.Convention,
		PageSize:   c.opts.PageSize,
		MaxRecords: c.opts.MaxRecords,
		CacheTTL:   c.opts.CacheTTL,
	}

	err := c.client.Paginate(ctx, "/votacoes", params, opts, func(payload *fetch.Payload, page int) (int, error) {
		records, err := ingest.Records(payload.Body)
		if err != nil {
			return 0, err
		}
		c.archivePage(ctx, report, fmt.Sprintf("votacoes-p%04d", page), payload.Body)

		for _, raw := range records {
			session, err := MapSession(raw)
			if err != nil {
				c.logger.Warn("session skipped", "error", err)
				report.RecordSkip(err)
				continue
			}

			if err := c.collectSession(ctx, report, session); err != nil {
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

// collectSession fetches and upserts one session's ballots. A non-nil return
// aborts the whole pass.
func (c *Collector) collectSession(ctx context.Context, report *ingest.Report, session Session) error {
	path := fmt.Sprintf("/votacoes/%s/votos", url.PathEscape(session.ExternalID))
	payload, err := c.client.Get(ctx, path, nil, c.opts.CacheTTL)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		c.logger.Warn("ballots fetch failed", "session", session.ExternalID, "error", err)
		report.RecordFailure(err)
		return nil
	}

	records, err := ingest.Records(payload.Body)
	if err != nil {
		report.RecordFailure(err)
		return nil
	}
	report.RecordFetched(len(records))
	c.archivePage(ctx, report, "votos-"+session.ExternalID, payload.Body)

	for _, raw := range records {
		mapped, err := MapVote(raw)
		if err != nil {
			c.logger.Warn("ballot skipped", "session", session.ExternalID, "error", err)
			report.RecordSkip(err)
			continue
		}

		legislator, err := c.legislators.FindByExternalID(ctx, mapped.LegislatorExternal)
		if err != nil {
			if errors.Is(err, legislators.ErrNotFound) {
				report.RecordSkip(ErrUnknownLegislator)
				continue
			}
			report.RecordFailure(err)
			continue
		}

		vote := mapped.Vote
		vote.ExternalVoteID = session.ExternalID
		vote.LegislatorID = legislator.ID
		vote.Organ = session.Organ

		outcome, err := c.repo.Upsert(ctx, vote)
		if err != nil {
			if ingest.FatalPersistence(err) {
				return err
			}
			report.RecordFailure(err)
			continue
		}
		report.RecordOutcome(outcome)
	}

	return nil
}

func (c *Collector) archivePage(ctx context.Context, report *ingest.Report, identity string, body []byte) {
	if _, err := c.store.Store(ctx, category, strconv.Itoa(c.opts.Year), identity, body); err != nil {
		c.logger.Warn("archive failed", "identity", identity, "error", err)
		return
	}
	report.RecordArchived()
}
