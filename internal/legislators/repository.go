package legislators

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/pkg/repository"
)

const selectColumns = "id, external_id, name, party_id, state, email, photo_url, created_at, updated_at"

// Repository persists legislators with idempotent upsert semantics.
type Repository struct {
	db     *sql.DB
	locks  *repository.KeyLock
	logger *slog.Logger
}

// NewRepository creates a legislator repository.
func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		locks:  repository.NewKeyLock(),
		logger: logger.With("system", "legislators"),
	}
}

// Upsert writes the legislator by natural key: insert if absent, update if
// any field changed, no-op otherwise.
func (r *Repository) Upsert(ctx context.Context, l Legislator) (repository.Outcome, error) {
	key := l.NaturalKey()
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	existing, err := r.FindByExternalID(ctx, l.ExternalID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, repository.Translate(err)
	}

	if existing == nil {
		q := `
			INSERT INTO legislators(id, external_id, name, party_id, state, email, photo_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`
		args := []any{uuid.New(), l.ExternalID, l.Name, l.PartyID, l.State, l.Email, l.PhotoURL}
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return 0, repository.Translate(err)
		}
		return repository.Inserted, nil
	}

	if unchanged(existing, &l) {
		return repository.Unchanged, nil
	}

	q := `
		UPDATE legislators
		SET name = $2, party_id = $3, state = $4, email = $5, photo_url = $6, updated_at = now()
		WHERE external_id = $1`
	args := []any{l.ExternalID, l.Name, l.PartyID, l.State, l.Email, l.PhotoURL}
	if err := repository.ExecExpectOne(ctx, r.db, q, args...); err != nil {
		return 0, repository.Translate(err)
	}
	return repository.Updated, nil
}

func unchanged(existing, incoming *Legislator) bool {
	return existing.Name == incoming.Name &&
		equalID(existing.PartyID, incoming.PartyID) &&
		existing.State == incoming.State &&
		existing.Email == incoming.Email &&
		existing.PhotoURL == incoming.PhotoURL
}

func equalID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// FindByExternalID returns the legislator with the given source ID.
func (r *Repository) FindByExternalID(ctx context.Context, externalID int) (*Legislator, error) {
	q := "SELECT " + selectColumns + " FROM legislators WHERE external_id = $1"

	l, err := repository.QueryOne(ctx, r.db, q, []any{externalID}, scanLegislator)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, repository.Translate(err)
	}
	return &l, nil
}

// FindByName returns the legislator with the given name, compared
// case-insensitively. Amendment records identify authors by name only.
func (r *Repository) FindByName(ctx context.Context, name string) (*Legislator, error) {
	q := "SELECT " + selectColumns + " FROM legislators WHERE upper(name) = upper($1)"

	l, err := repository.QueryOne(ctx, r.db, q, []any{name}, scanLegislator)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, repository.Translate(err)
	}
	return &l, nil
}

// Refs returns the identifier pairs of all legislators, ordered by source ID.
// Later collectors iterate these for per-legislator endpoints.
func (r *Repository) Refs(ctx context.Context) ([]Ref, error) {
	q := "SELECT id, external_id FROM legislators ORDER BY external_id"
	return repository.QueryMany(ctx, r.db, q, nil, scanRef)
}

// List returns all legislators ordered by name.
func (r *Repository) List(ctx context.Context) ([]Legislator, error) {
	q := "SELECT " + selectColumns + " FROM legislators ORDER BY name"
	return repository.QueryMany(ctx, r.db, q, nil, scanLegislator)
}
