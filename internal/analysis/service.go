package analysis

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/internal/proposals"
)

const category = "analysis"

// ServiceOptions configure one analysis pass.
type ServiceOptions struct {
	Version        string
	MaxConcurrency int
	BatchLimit     int
	ErrorSamples   int
}

// Service drains pending proposals through triage and the analyzer. Failed
// analyses leave no row behind, so the next pass picks those proposals up
// again.
type Service struct {
	proposals *proposals.Repository
	results   *Repository
	triage    *Triage
	analyzer  Analyzer
	opts      ServiceOptions
	logger    *slog.Logger
}

// NewService creates an analysis service.
func NewService(
	proposalRepo *proposals.Repository,
	resultRepo *Repository,
	triage *Triage,
	analyzer Analyzer,
	opts ServiceOptions,
	logger *slog.Logger,
) *Service {
	return &Service{
		proposals: proposalRepo,
		results:   resultRepo,
		triage:    triage,
		analyzer:  analyzer,
		opts:      opts,
		logger:    logger.With("system", category),
	}
}

// ProcessPending analyzes up to the configured batch of pending proposals.
// Only a persistence fault aborts the pass; analyzer failures are counted and
// retried next run.
func (s *Service) ProcessPending(ctx context.Context) *ingest.Report {
	report := ingest.NewReport(category, s.opts.ErrorSamples)

	pending, err := s.proposals.ListPending(ctx, s.opts.Version, s.opts.BatchLimit)
	if err != nil {
		report.Abort(err)
		return report.Finish()
	}
	report.RecordFetched(len(pending))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.opts.MaxConcurrency)

	for _, proposal := range pending {
		proposal := proposal
		group.Go(func() error {
			return s.process(groupCtx, report, proposal)
		})
	}

	if err := group.Wait(); err != nil {
		s.logger.Error("analysis aborted", "error", err)
		report.Abort(err)
	}

	return report.Finish()
}

// process handles one proposal. A non-nil return cancels the group; analyzer
// failures return nil so siblings keep running.
func (s *Service) process(ctx context.Context, report *ingest.Report, proposal proposals.Proposal) error {
	if s.triage.Trivial(proposal.Summary) {
		return s.save(ctx, report, Result{
			ProposalID:      proposal.ID,
			AnalysisVersion: s.opts.Version,
			Status:          StatusTrivial,
		})
	}

	assessed, err := s.analyzer.Analyze(ctx, proposal)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		var ae *Error
		if errors.As(err, &ae) {
			s.logger.Warn("proposal left pending", "proposal", proposal.ExternalID, "kind", ae.Kind)
			report.RecordFailure(err)
			return nil
		}
		report.RecordFailure(err)
		return nil
	}

	return s.save(ctx, report, Result{
		ProposalID:      proposal.ID,
		AnalysisVersion: s.opts.Version,
		Status:          StatusNonTrivial,
		ScopeImpact:     assessed.ScopeImpact,
		GoalAlignment:   assessed.GoalAlignment,
		Innovation:      assessed.Innovation,
		FiscalSoundness: assessed.FiscalSoundness,
		Penalty:         assessed.Penalty,
		TotalScore:      assessed.Total(),
		Rationale:       assessed.Rationale,
	})
}

func (s *Service) save(ctx context.Context, report *ingest.Report, result Result) error {
	outcome, err := s.results.Save(ctx, result)
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
