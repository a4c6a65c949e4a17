package votes

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/pkg/repository"
)

const selectColumns = "id, external_vote_id, legislator_id, choice, organ, voted_at, created_at, updated_at"

// Repository persists votes with idempotent upsert semantics.
type Repository struct {
	db     *sql.DB
	locks  *repository.KeyLock
	logger *slog.Logger
}

// NewRepository creates a vote repository.
func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		locks:  repository.NewKeyLock(),
		logger: logger.With("system", "votes"),
	}
}

// Upsert writes the vote by its composite natural key: insert if absent,
// update if the recorded position changed, no-op otherwise.
func (r *Repository) Upsert(ctx context.Context, v Vote) (repository.Outcome, error) {
	key := v.NaturalKey()
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	existing, err := r.find(ctx, v.ExternalVoteID, v.LegislatorID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, repository.Translate(err)
	}

	if existing == nil {
		q := `
			INSERT INTO votes(id, external_vote_id, legislator_id, choice, organ, voted_at)
			VALUES ($1, $2, $3, $4, $5, $6)`
		args := []any{uuid.New(), v.ExternalVoteID, v.LegislatorID, v.Choice, v.Organ, v.VotedAt}
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return 0, repository.Translate(err)
		}
		return repository.Inserted, nil
	}

	if unchanged(existing, &v) {
		return repository.Unchanged, nil
	}

	q := `
		UPDATE votes
		SET choice = $3, organ = $4, voted_at = $5, updated_at = now()
		WHERE external_vote_id = $1 AND legislator_id = $2`
	args := []any{v.ExternalVoteID, v.LegislatorID, v.Choice, v.Organ, v.VotedAt}
	if err := repository.ExecExpectOne(ctx, r.db, q, args...); err != nil {
		return 0, repository.Translate(err)
	}
	return repository.Updated, nil
}

func unchanged(existing, incoming *Vote) bool {
	return existing.Choice == incoming.Choice &&
		existing.Organ == incoming.Organ &&
		equalTime(existing.VotedAt, incoming.VotedAt)
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (r *Repository) find(ctx context.Context, externalVoteID string, legislatorID uuid.UUID) (*Vote, error) {
	q := "SELECT " + selectColumns + " FROM votes WHERE external_vote_id = $1 AND legislator_id = $2"

	v, err := repository.QueryOne(ctx, r.db, q, []any{externalVoteID, legislatorID}, scanVote)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, repository.Translate(err)
	}
	return &v, nil
}
