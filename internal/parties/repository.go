package parties

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/pkg/repository"
)

const selectColumns = "id, external_id, abbreviation, name, created_at, updated_at"

// Repository persists parties with idempotent upsert semantics.
type Repository struct {
	db     *sql.DB
	locks  *repository.KeyLock
	logger *slog.Logger
}

// NewRepository creates a party repository.
func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		locks:  repository.NewKeyLock(),
		logger: logger.With("system", "parties"),
	}
}

// Upsert writes the party by natural key: insert if absent, update if any
// field changed, no-op otherwise. Safe for concurrent callers; upserts for
// the same abbreviation serialize.
func (r *Repository) Upsert(ctx context.Context, p Party) (repository.Outcome, error) {
	key := p.NaturalKey()
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	existing, err := r.FindByAbbreviation(ctx, p.Abbreviation)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, repository.Translate(err)
	}

	if existing == nil {
		q := `
			INSERT INTO parties(id, external_id, abbreviation, name)
			VALUES ($1, $2, $3, $4)`
		if _, err := r.db.ExecContext(ctx, q, uuid.New(), p.ExternalID, p.Abbreviation, p.Name); err != nil {
			return 0, repository.Translate(err)
		}
		return repository.Inserted, nil
	}

	if existing.ExternalID == p.ExternalID && existing.Name == p.Name {
		return repository.Unchanged, nil
	}

	q := `
		UPDATE parties
		SET external_id = $2, name = $3, updated_at = now()
		WHERE abbreviation = $1`
	if err := repository.ExecExpectOne(ctx, r.db, q, p.Abbreviation, p.ExternalID, p.Name); err != nil {
		return 0, repository.Translate(err)
	}
	return repository.Updated, nil
}

// FindByAbbreviation returns the party with the given abbreviation.
func (r *Repository) FindByAbbreviation(ctx context.Context, abbreviation string) (*Party, error) {
	q := "SELECT " + selectColumns + " FROM parties WHERE abbreviation = $1"

	p, err := repository.QueryOne(ctx, r.db, q, []any{abbreviation}, scanParty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, repository.Translate(err)
	}
	return &p, nil
}

// List returns all parties ordered by abbreviation.
func (r *Repository) List(ctx context.Context) ([]Party, error) {
	q := "SELECT " + selectColumns + " FROM parties ORDER BY abbreviation"
	return repository.QueryMany(ctx, r.db, q, nil, scanParty)
}
