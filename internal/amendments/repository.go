package amendments

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/pkg/repository"
)

const selectColumns = "id, code, year, legislator_id, author_name, kind, function, location, committed, settled, paid, created_at, updated_at"

// Summary aggregates one legislator's amendments for a year. Committee
// amendments have no legislator and never appear in a summary.
type Summary struct {
	LegislatorID      uuid.UUID
	Year              int
	Count             int
	TotalCommitted    float64
	TotalPaid         float64
	DistinctLocations int
}

// Repository persists budget amendments with idempotent upsert semantics.
type Repository struct {
	db     *sql.DB
	locks  *repository.KeyLock
	logger *slog.Logger
}

// NewRepository creates an amendment repository.
func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		locks:  repository.NewKeyLock(),
		logger: logger.With("system", "amendments"),
	}
}

// Upsert writes the amendment by code: insert if absent, update if any field
// changed, no-op otherwise.
func (r *Repository) Upsert(ctx context.Context, a Amendment) (repository.Outcome, error) {
	key := a.NaturalKey()
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	existing, err := r.FindByCode(ctx, a.Code)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, repository.Translate(err)
	}

	if existing == nil {
		q := `
			INSERT INTO budget_amendments(id, code, year, legislator_id, author_name, kind, function, location, committed, settled, paid)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		args := []any{
			uuid.New(), a.Code, a.Year, a.LegislatorID, a.AuthorName,
			a.Kind, a.Function, a.Location, a.Committed, a.Settled, a.Paid,
		}
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return 0, repository.Translate(err)
		}
		return repository.Inserted, nil
	}

	if unchanged(existing, &a) {
		return repository.Unchanged, nil
	}

	q := `
		UPDATE budget_amendments
		SET year = $2, legislator_id = $3, author_name = $4, kind = $5, function = $6,
			location = $7, committed = $8, settled = $9, paid = $10, updated_at = now()
		WHERE code = $1`
	args := []any{
		a.Code, a.Year, a.LegislatorID, a.AuthorName, a.Kind,
		a.Function, a.Location, a.Committed, a.Settled, a.Paid,
	}
	if err := repository.ExecExpectOne(ctx, r.db, q, args...); err != nil {
		return 0, repository.Translate(err)
	}
	return repository.Updated, nil
}

func unchanged(existing, incoming *Amendment) bool {
	return existing.Year == incoming.Year &&
		equalID(existing.LegislatorID, incoming.LegislatorID) &&
		existing.AuthorName == incoming.AuthorName &&
		existing.Kind == incoming.Kind &&
		existing.Function == incoming.Function &&
		existing.Location == incoming.Location &&
		existing.Committed == incoming.Committed &&
		existing.Settled == incoming.Settled &&
		existing.Paid == incoming.Paid
}

func equalID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// FindByCode returns the amendment with the given source code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*Amendment, error) {
	q := "SELECT " + selectColumns + " FROM budget_amendments WHERE code = $1"

	a, err := repository.QueryOne(ctx, r.db, q, []any{code}, scanAmendment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, repository.Translate(err)
	}
	return &a, nil
}

// Summarize aggregates one legislator's amendment profile for a year.
func (r *Repository) Summarize(ctx context.Context, legislatorID uuid.UUID, year int) (Summary, error) {
	q := `
		SELECT
			COUNT(*),
			COALESCE(SUM(committed), 0),
			COALESCE(SUM(paid), 0),
			COUNT(DISTINCT location)
		FROM budget_amendments
		WHERE legislator_id = $1 AND year = $2`

	s := Summary{LegislatorID: legislatorID, Year: year}
	row := r.db.QueryRowContext(ctx, q, legislatorID, year)
	if err := row.Scan(&s.Count, &s.TotalCommitted, &s.TotalPaid, &s.DistinctLocations); err != nil {
		return Summary{}, repository.Translate(err)
	}
	return s, nil
}
