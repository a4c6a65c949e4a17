package scoring

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/pkg/repository"
)

const selectColumns = "id, legislator_id, methodology_version, year, legislative, relevance, fiscal, ethics, composite_index, computed_at"

// Repository persists composite scores, one row per legislator per
// methodology version per year.
type Repository struct {
	db     *sql.DB
	locks  *repository.KeyLock
	logger *slog.Logger
}

// NewRepository creates a composite score repository.
func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		locks:  repository.NewKeyLock(),
		logger: logger.With("system", "scoring"),
	}
}

// Upsert writes the score for its (legislator, version, year) key,
// refreshing the stored row when recomputation changed any value. The
// find-compare-write sequence runs in one transaction.
func (r *Repository) Upsert(ctx context.Context, score CompositeScore) (repository.Outcome, error) {
	key := score.LegislatorID.String() + "|" + score.MethodologyVersion
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (repository.Outcome, error) {
		existing, err := findScore(ctx, tx, score.LegislatorID, score.MethodologyVersion, score.Year)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return 0, repository.Translate(err)
		}

		if existing == nil {
			q := `
				INSERT INTO composite_scores(id, legislator_id, methodology_version, year, legislative, relevance, fiscal, ethics, composite_index)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
			args := []any{
				uuid.New(), score.LegislatorID, score.MethodologyVersion, score.Year,
				score.Legislative, score.Relevance, score.Fiscal, score.Ethics, score.Index,
			}
			if _, err := tx.ExecContext(ctx, q, args...); err != nil {
				return 0, repository.Translate(err)
			}
			return repository.Inserted, nil
		}

		if unchanged(existing, &score) {
			return repository.Unchanged, nil
		}

		q := `
			UPDATE composite_scores
			SET legislative = $4, relevance = $5, fiscal = $6, ethics = $7, composite_index = $8, computed_at = now()
			WHERE legislator_id = $1 AND methodology_version = $2 AND year = $3`
		args := []any{
			score.LegislatorID, score.MethodologyVersion, score.Year,
			score.Legislative, score.Relevance, score.Fiscal, score.Ethics, score.Index,
		}
		if err := repository.ExecExpectOne(ctx, tx, q, args...); err != nil {
			return 0, repository.Translate(err)
		}
		return repository.Updated, nil
	})
}

func unchanged(existing, incoming *CompositeScore) bool {
	return equalAxis(existing.Legislative, incoming.Legislative) &&
		equalAxis(existing.Relevance, incoming.Relevance) &&
		equalAxis(existing.Fiscal, incoming.Fiscal) &&
		equalAxis(existing.Ethics, incoming.Ethics) &&
		existing.Index == incoming.Index
}

func equalAxis(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Find returns the stored score for a legislator under a methodology version
// and year.
func (r *Repository) Find(ctx context.Context, legislatorID uuid.UUID, version string, year int) (*CompositeScore, error) {
	return findScore(ctx, r.db, legislatorID, version, year)
}

func findScore(ctx context.Context, q repository.Querier, legislatorID uuid.UUID, version string, year int) (*CompositeScore, error) {
	query := "SELECT " + selectColumns + ` FROM composite_scores
		WHERE legislator_id = $1 AND methodology_version = $2 AND year = $3`

	score, err := repository.QueryOne(ctx, q, query, []any{legislatorID, version, year}, scanScore)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, repository.Translate(err)
	}
	return &score, nil
}

// ListByVersion returns all scores under a methodology version and year,
// highest index first.
func (r *Repository) ListByVersion(ctx context.Context, version string, year int) ([]CompositeScore, error) {
	q := "SELECT " + selectColumns + ` FROM composite_scores
		WHERE methodology_version = $1 AND year = $2
		ORDER BY composite_index DESC`
	return repository.QueryMany(ctx, r.db, q, []any{version, year}, scanScore)
}

// PartySummaries averages stored indices per party for a methodology version
// and year.
func (r *Repository) PartySummaries(ctx context.Context, version string, year int) ([]PartySummary, error) {
	q := `
		SELECT pt.id, pt.abbreviation, pt.name, AVG(cs.composite_index), COUNT(*)
		FROM composite_scores cs
		JOIN legislators l ON l.id = cs.legislator_id
		JOIN parties pt ON pt.id = l.party_id
		WHERE cs.methodology_version = $1 AND cs.year = $2
		GROUP BY pt.id, pt.abbreviation, pt.name
		ORDER BY AVG(cs.composite_index) DESC`

	return repository.QueryMany(ctx, r.db, q, []any{version, year}, func(s repository.Scanner) (PartySummary, error) {
		var p PartySummary
		err := s.Scan(&p.PartyID, &p.Abbreviation, &p.Name, &p.AverageIndex, &p.Legislators)
		return p, err
	})
}

func scanScore(s repository.Scanner) (CompositeScore, error) {
	var score CompositeScore
	err := s.Scan(
		&score.ID,
		&score.LegislatorID,
		&score.MethodologyVersion,
		&score.Year,
		&score.Legislative,
		&score.Relevance,
		&score.Fiscal,
		&score.Ethics,
		&score.Index,
		&score.ComputedAt,
	)
	return score, err
}
