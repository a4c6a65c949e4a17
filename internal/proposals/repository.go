package proposals

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/pkg/repository"
)

const selectColumns = "id, external_id, legislator_id, kind, number, year, summary, status, presented_at, full_text_url, created_at, updated_at"

const documentColumns = "id, proposal_id, url, page_count, archive_key, fetched_at"

// Repository persists proposals and their archived documents with idempotent
// upsert semantics.
type Repository struct {
	db     *sql.DB
	locks  *repository.KeyLock
	logger *slog.Logger
}

// NewRepository creates a proposal repository.
func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		locks:  repository.NewKeyLock(),
		logger: logger.With("system", "proposals"),
	}
}

// Upsert writes the proposal by external ID: insert if absent, update if any
// field changed, no-op otherwise.
func (r *Repository) Upsert(ctx context.Context, p Proposal) (repository.Outcome, error) {
	key := p.NaturalKey()
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	existing, err := r.FindByExternalID(ctx, p.ExternalID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, repository.Translate(err)
	}

	if existing == nil {
		q := `
			INSERT INTO proposals(id, external_id, legislator_id, kind, number, year, summary, status, presented_at, full_text_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		args := []any{
			uuid.New(), p.ExternalID, p.LegislatorID, p.Kind, p.Number,
			p.Year, p.Summary, p.Status, p.PresentedAt, p.FullTextURL,
		}
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return 0, repository.Translate(err)
		}
		return repository.Inserted, nil
	}

	if unchanged(existing, &p) {
		return repository.Unchanged, nil
	}

	q := `
		UPDATE proposals
		SET legislator_id = $2, kind = $3, number = $4, year = $5, summary = $6,
			status = $7, presented_at = $8, full_text_url = $9, updated_at = now()
		WHERE external_id = $1`
	args := []any{
		p.ExternalID, p.LegislatorID, p.Kind, p.Number, p.Year,
		p.Summary, p.Status, p.PresentedAt, p.FullTextURL,
	}
	if err := repository.ExecExpectOne(ctx, r.db, q, args...); err != nil {
		return 0, repository.Translate(err)
	}
	return repository.Updated, nil
}

func unchanged(existing, incoming *Proposal) bool {
	return existing.LegislatorID == incoming.LegislatorID &&
		existing.Kind == incoming.Kind &&
		existing.Number == incoming.Number &&
		existing.Year == incoming.Year &&
		existing.Summary == incoming.Summary &&
		existing.Status == incoming.Status &&
		equalTime(existing.PresentedAt, incoming.PresentedAt) &&
		existing.FullTextURL == incoming.FullTextURL
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// FindByExternalID returns the proposal with the given source ID.
func (r *Repository) FindByExternalID(ctx context.Context, externalID int) (*Proposal, error) {
	q := "SELECT " + selectColumns + " FROM proposals WHERE external_id = $1"

	p, err := repository.QueryOne(ctx, r.db, q, []any{externalID}, scanProposal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, repository.Translate(err)
	}
	return &p, nil
}

// ListPending returns proposals with no analysis result under the given
// analysis version, oldest first, capped at limit.
func (r *Repository) ListPending(ctx context.Context, analysisVersion string, limit int) ([]Proposal, error) {
	q := `
		SELECT ` + prefixed("p") + `
		FROM proposals p
		LEFT JOIN analysis_results ar
			ON ar.proposal_id = p.id AND ar.analysis_version = $1
		WHERE ar.id IS NULL
		ORDER BY p.external_id
		LIMIT $2`
	return repository.QueryMany(ctx, r.db, q, []any{analysisVersion, limit}, scanProposal)
}

func prefixed(alias string) string {
	return alias + ".id, " + alias + ".external_id, " + alias + ".legislator_id, " +
		alias + ".kind, " + alias + ".number, " + alias + ".year, " + alias + ".summary, " +
		alias + ".status, " + alias + ".presented_at, " + alias + ".full_text_url, " +
		alias + ".created_at, " + alias + ".updated_at"
}

// Summarize aggregates one legislator's proposal activity for a year. The
// active-month spread counts distinct presentation months.
func (r *Repository) Summarize(ctx context.Context, legislatorID uuid.UUID, year int) (Stats, error) {
	q := `
		SELECT
			COUNT(*),
			COUNT(DISTINCT kind),
			COUNT(DISTINCT date_trunc('month', presented_at)) FILTER (WHERE presented_at IS NOT NULL)
		FROM proposals
		WHERE legislator_id = $1 AND year = $2`

	s := Stats{LegislatorID: legislatorID, Year: year}
	row := r.db.QueryRowContext(ctx, q, legislatorID, year)
	if err := row.Scan(&s.Count, &s.DistinctKinds, &s.ActiveMonths); err != nil {
		return Stats{}, repository.Translate(err)
	}
	return s, nil
}

// UpsertDocument writes the proposal's document record, at most one per
// proposal, replacing it when the source URL changed.
func (r *Repository) UpsertDocument(ctx context.Context, d Document) (repository.Outcome, error) {
	key := "document|" + d.ProposalID.String()
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	existing, err := r.FindDocument(ctx, d.ProposalID)
	if err != nil && !errors.Is(err, ErrDocumentNotFound) {
		return 0, repository.Translate(err)
	}

	if existing == nil {
		q := `
			INSERT INTO proposal_documents(id, proposal_id, url, page_count, archive_key, fetched_at)
			VALUES ($1, $2, $3, $4, $5, now())`
		args := []any{uuid.New(), d.ProposalID, d.URL, d.PageCount, d.ArchiveKey}
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return 0, repository.Translate(err)
		}
		return repository.Inserted, nil
	}

	if existing.URL == d.URL && existing.PageCount == d.PageCount && existing.ArchiveKey == d.ArchiveKey {
		return repository.Unchanged, nil
	}

	q := `
		UPDATE proposal_documents
		SET url = $2, page_count = $3, archive_key = $4, fetched_at = now()
		WHERE proposal_id = $1`
	args := []any{d.ProposalID, d.URL, d.PageCount, d.ArchiveKey}
	if err := repository.ExecExpectOne(ctx, r.db, q, args...); err != nil {
		return 0, repository.Translate(err)
	}
	return repository.Updated, nil
}

// FindDocument returns the archived document record for a proposal.
func (r *Repository) FindDocument(ctx context.Context, proposalID uuid.UUID) (*Document, error) {
	q := "SELECT " + documentColumns + " FROM proposal_documents WHERE proposal_id = $1"

	d, err := repository.QueryOne(ctx, r.db, q, []any{proposalID}, scanDocument)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, repository.Translate(err)
	}
	return &d, nil
}
