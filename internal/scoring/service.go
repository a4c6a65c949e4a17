package scoring

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/internal/amendments"
	"github.com/tribuna-project/tribuna/internal/analysis"
	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/internal/legislators"
	"github.com/tribuna-project/tribuna/internal/proposals"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

const category = "scoring"

// ServiceOptions configure one scoring pass.
type ServiceOptions struct {
	Year            int
	AnalysisVersion string
	ErrorSamples    int
}

// Roster lists the legislators to score.
type Roster interface {
	Refs(ctx context.Context) ([]legislators.Ref, error)
}

// ProposalSource aggregates one legislator's proposal activity.
type ProposalSource interface {
	Summarize(ctx context.Context, legislatorID uuid.UUID, year int) (proposals.Stats, error)
}

// AmendmentSource aggregates one legislator's budget amendments.
type AmendmentSource interface {
	Summarize(ctx context.Context, legislatorID uuid.UUID, year int) (amendments.Summary, error)
}

// AnalysisSource aggregates one legislator's relevance analysis outcomes.
type AnalysisSource interface {
	Summarize(ctx context.Context, legislatorID uuid.UUID, year int, version string, highThreshold int) (analysis.Summary, error)
}

// ScoreStore persists computed scores and derives the standings read back
// after a pass.
type ScoreStore interface {
	Upsert(ctx context.Context, score CompositeScore) (repository.Outcome, error)
	PartySummaries(ctx context.Context, version string, year int) ([]PartySummary, error)
	ListByVersion(ctx context.Context, version string, year int) ([]CompositeScore, error)
}

// Service recomputes composite scores for every known legislator.
type Service struct {
	engine      *Engine
	legislators Roster
	proposals   ProposalSource
	amendments  AmendmentSource
	analysis    AnalysisSource
	scores      ScoreStore
	opts        ServiceOptions
	logger      *slog.Logger
}

// NewService creates a scoring service.
func NewService(
	engine *Engine,
	legislatorRepo Roster,
	proposalRepo ProposalSource,
	amendmentRepo AmendmentSource,
	analysisRepo AnalysisSource,
	scoreRepo ScoreStore,
	opts ServiceOptions,
	logger *slog.Logger,
) *Service {
	return &Service{
		engine:      engine,
		legislators: legislatorRepo,
		proposals:   proposalRepo,
		amendments:  amendmentRepo,
		analysis:    analysisRepo,
		scores:      scoreRepo,
		opts:        opts,
		logger:      logger.With("system", category),
	}
}

// ScoreAll recomputes every legislator's composite score under the engine's
// methodology version, then derives the per-party standings from the stored
// rows. Aggregation reads are cheap relative to ingestion, so the pass always
// recomputes from scratch.
func (s *Service) ScoreAll(ctx context.Context) *ingest.Report {
	report := ingest.NewReport(category, s.opts.ErrorSamples)

	refs, err := s.legislators.Refs(ctx)
	if err != nil {
		report.Abort(err)
		return report.Finish()
	}
	report.RecordFetched(len(refs))

	for _, ref := range refs {
		if ctx.Err() != nil {
			report.Abort(ctx.Err())
			break
		}

		if err := s.score(ctx, report, ref); err != nil {
			report.Abort(err)
			break
		}
	}

	if report.Aborted == "" {
		s.summarizeParties(ctx, report)
	}

	return report.Finish()
}

// Ranking returns the stored scores under the engine's methodology version
// for the pass year, highest index first.
func (s *Service) Ranking(ctx context.Context) ([]CompositeScore, error) {
	return s.scores.ListByVersion(ctx, s.engine.Version(), s.opts.Year)
}

// summarizeParties logs the average index per party for the version just
// scored. Legislators without a party membership are not represented.
func (s *Service) summarizeParties(ctx context.Context, report *ingest.Report) {
	summaries, err := s.scores.PartySummaries(ctx, s.engine.Version(), s.opts.Year)
	if err != nil {
		s.logger.Warn("party summary failed", "error", err)
		report.RecordFailure(err)
		return
	}

	for _, summary := range summaries {
		s.logger.Info("party standing",
			"party", summary.Abbreviation,
			"average_index", summary.AverageIndex,
			"legislators", summary.Legislators,
		)
	}
}

// score computes and persists one legislator's composite. A non-nil return
// aborts the pass; aggregation problems count as record failures.
func (s *Service) score(ctx context.Context, report *ingest.Report, ref legislators.Ref) error {
	inputs, err := s.gather(ctx, ref)
	if err != nil {
		if ingest.FatalPersistence(err) {
			return err
		}
		s.logger.Warn("aggregation failed", "legislator", ref.ExternalID, "error", err)
		report.RecordFailure(err)
		return nil
	}

	axes := s.engine.Score(inputs)

	outcome, err := s.scores.Upsert(ctx, CompositeScore{
		LegislatorID:       ref.ID,
		MethodologyVersion: s.engine.Version(),
		Year:               s.opts.Year,
		Legislative:        axisColumn(axes.Legislative),
		Relevance:          axisColumn(axes.Relevance),
		Fiscal:             axisColumn(axes.Fiscal),
		Ethics:             axisColumn(axes.Ethics),
		Index:              s.engine.Composite(axes),
	})
	if err != nil {
		if ingest.FatalPersistence(err) {
			return err
		}
		report.RecordFailure(err)
		return nil
	}

	report.RecordOutcome(outcome)
	return nil
}

func (s *Service) gather(ctx context.Context, ref legislators.Ref) (Inputs, error) {
	stats, err := s.proposals.Summarize(ctx, ref.ID, s.opts.Year)
	if err != nil {
		return Inputs{}, err
	}

	amendmentSummary, err := s.amendments.Summarize(ctx, ref.ID, s.opts.Year)
	if err != nil {
		return Inputs{}, err
	}

	highCutoff := int(s.engine.m.Ethics.HighScoreCutoff)
	analysisSummary, err := s.analysis.Summarize(ctx, ref.ID, s.opts.Year, s.opts.AnalysisVersion, highCutoff)
	if err != nil {
		return Inputs{}, err
	}

	return Inputs{
		Proposals:  stats,
		Amendments: amendmentSummary,
		Analysis:   analysisSummary,
	}, nil
}
