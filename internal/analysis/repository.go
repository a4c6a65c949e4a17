package analysis

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/pkg/repository"
)

const selectColumns = "id, proposal_id, analysis_version, status, scope_impact, goal_alignment, innovation, fiscal_soundness, penalty, total_score, rationale, created_at"

// Summary aggregates one legislator's analysis outcomes for a year under one
// analysis version.
type Summary struct {
	LegislatorID        uuid.UUID
	Year                int
	NonTrivial          int
	Trivial             int
	MeanScore           float64
	MeanFiscalSoundness float64
	HighScoring         int
}

// Repository persists analysis results. Results are immutable per
// (proposal, analysis version); re-processing the same pair is a no-op.
type Repository struct {
	db     *sql.DB
	locks  *repository.KeyLock
	logger *slog.Logger
}

// NewRepository creates an analysis result repository.
func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		locks:  repository.NewKeyLock(),
		logger: logger.With("system", "analysis"),
	}
}

// Save writes the result unless one already exists for the proposal under the
// same analysis version.
func (r *Repository) Save(ctx context.Context, result Result) (repository.Outcome, error) {
	key := result.ProposalID.String() + "|" + result.AnalysisVersion
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	existing, err := r.Find(ctx, result.ProposalID, result.AnalysisVersion)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, repository.Translate(err)
	}
	if existing != nil {
		return repository.Unchanged, nil
	}

	q := `
		INSERT INTO analysis_results(id, proposal_id, analysis_version, status, scope_impact, goal_alignment, innovation, fiscal_soundness, penalty, total_score, rationale)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	args := []any{
		uuid.New(), result.ProposalID, result.AnalysisVersion, result.Status,
		result.ScopeImpact, result.GoalAlignment, result.Innovation,
		result.FiscalSoundness, result.Penalty, result.TotalScore, result.Rationale,
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return 0, repository.Translate(err)
	}
	return repository.Inserted, nil
}

// Find returns the result for a proposal under an analysis version.
func (r *Repository) Find(ctx context.Context, proposalID uuid.UUID, version string) (*Result, error) {
	q := "SELECT " + selectColumns + " FROM analysis_results WHERE proposal_id = $1 AND analysis_version = $2"

	result, err := repository.QueryOne(ctx, r.db, q, []any{proposalID, version}, scanResult)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, repository.Translate(err)
	}
	return &result, nil
}

// Summarize aggregates one legislator's analysis outcomes for a year. The
// highThreshold parameter counts non-trivial results at or above it.
func (r *Repository) Summarize(ctx context.Context, legislatorID uuid.UUID, year int, version string, highThreshold int) (Summary, error) {
	q := `
		SELECT
			COUNT(*) FILTER (WHERE ar.status = 'non_trivial'),
			COUNT(*) FILTER (WHERE ar.status = 'trivial'),
			COALESCE(AVG(ar.total_score) FILTER (WHERE ar.status = 'non_trivial'), 0),
			COALESCE(AVG(ar.fiscal_soundness) FILTER (WHERE ar.status = 'non_trivial'), 0),
			COUNT(*) FILTER (WHERE ar.status = 'non_trivial' AND ar.total_score >= $4)
		FROM analysis_results ar
		JOIN proposals p ON p.id = ar.proposal_id
		WHERE p.legislator_id = $1 AND p.year = $2 AND ar.analysis_version = $3`

	s := Summary{LegislatorID: legislatorID, Year: year}
	row := r.db.QueryRowContext(ctx, q, legislatorID, year, version, highThreshold)
	if err := row.Scan(&s.NonTrivial, &s.Trivial, &s.MeanScore, &s.MeanFiscalSoundness, &s.HighScoring); err != nil {
		return Summary{}, repository.Translate(err)
	}
	return s, nil
}

func scanResult(s repository.Scanner) (Result, error) {
	var result Result
	err := s.Scan(
		&result.ID,
		&result.ProposalID,
		&result.AnalysisVersion,
		&result.Status,
		&result.ScopeImpact,
		&result.GoalAlignment,
		&result.Innovation,
		&result.FiscalSoundness,
		&result.Penalty,
		&result.TotalScore,
		&result.Rationale,
		&result.CreatedAt,
	)
	return result, err
}
