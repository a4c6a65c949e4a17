package main

import (
	"context"

	"github.com/tribuna-project/tribuna/internal/amendments"
	"github.com/tribuna-project/tribuna/internal/analysis"
	"github.com/tribuna-project/tribuna/internal/config"
	"github.com/tribuna-project/tribuna/internal/expenditures"
	"github.com/tribuna-project/tribuna/internal/infrastructure"
	"github.com/tribuna-project/tribuna/internal/legislators"
	"github.com/tribuna-project/tribuna/internal/parties"
	"github.com/tribuna-project/tribuna/internal/pipeline"
	"github.com/tribuna-project/tribuna/internal/proposals"
	"github.com/tribuna-project/tribuna/internal/scoring"
	"github.com/tribuna-project/tribuna/internal/votes"
)

// application wires repositories, collectors, and services onto the shared
// infrastructure. Collectors are grouped by dependency: reference data first,
// independent categories concurrently, votes after proposals.
type application struct {
	cfg   *config.Config
	infra *infrastructure.Infrastructure

	analysis *analysis.Service
	scoring  *scoring.Service
	runs     *pipeline.RunRepository

	reference   []pipeline.Collector
	independent []pipeline.Collector
	dependent   []pipeline.Collector
}

func newApplication(cfg *config.Config, infra *infrastructure.Infrastructure) *application {
	db := infra.Database.Connection()
	logger := infra.Logger
	collect := cfg.Collect

	partyRepo := parties.NewRepository(db, logger)
	legislatorRepo := legislators.NewRepository(db, logger)
	expenditureRepo := expenditures.NewRepository(db, logger)
	amendmentRepo := amendments.NewRepository(db, logger)
	proposalRepo := proposals.NewRepository(db, logger)
	voteRepo := votes.NewRepository(db, logger)
	resultRepo := analysis.NewRepository(db, logger)
	scoreRepo := scoring.NewRepository(db, logger)

	app := &application{
		cfg:   cfg,
		infra: infra,
		runs:  pipeline.NewRunRepository(db, logger),
	}

	if !collect.Parties.Disabled {
		app.reference = append(app.reference, parties.NewCollector(
			infra.Chamber, infra.Archive, partyRepo,
			parties.CollectorOptions{
				Convention:   cfg.Sources.Chamber.Pagination,
				PageSize:     cfg.Sources.Chamber.PageSize,
				MaxRecords:   collect.Parties.MaxRecords,
				CacheTTL:     collect.Parties.CacheTTLDuration(),
				Year:         collect.Year,
				ErrorSamples: collect.ErrorSamples,
			},
			logger,
		))
	}

	if !collect.Legislators.Disabled {
		app.reference = append(app.reference, legislators.NewCollector(
			infra.Chamber, infra.Archive, legislatorRepo, partyRepo,
			legislators.CollectorOptions{
				Convention:   cfg.Sources.Chamber.Pagination,
				PageSize:     cfg.Sources.Chamber.PageSize,
				MaxRecords:   collect.Legislators.MaxRecords,
				CacheTTL:     collect.Legislators.CacheTTLDuration(),
				Year:         collect.Year,
				ErrorSamples: collect.ErrorSamples,
			},
			logger,
		))
	}

	if !collect.Expenditures.Disabled {
		app.independent = append(app.independent, expenditures.NewCollector(
			infra.Chamber, infra.Archive, expenditureRepo, legislatorRepo,
			expenditures.CollectorOptions{
				Convention:   cfg.Sources.Chamber.Pagination,
				PageSize:     cfg.Sources.Chamber.PageSize,
				MaxRecords:   collect.Expenditures.MaxRecords,
				CacheTTL:     collect.Expenditures.CacheTTLDuration(),
				Year:         collect.Year,
				Months:       collect.ExpenditureMonths,
				MinValue:     collect.ExpenditureMinValue,
				ErrorSamples: collect.ErrorSamples,
			},
			logger,
		))
	}

	if !collect.Amendments.Disabled {
		app.independent = append(app.independent, amendments.NewCollector(
			infra.Treasury, infra.Archive, amendmentRepo, legislatorRepo,
			amendments.CollectorOptions{
				Convention:   cfg.Sources.Treasury.Pagination,
				PageSize:     cfg.Sources.Treasury.PageSize,
				MaxRecords:   collect.Amendments.MaxRecords,
				CacheTTL:     collect.Amendments.CacheTTLDuration(),
				Year:         collect.Year,
				ErrorSamples: collect.ErrorSamples,
			},
			logger,
		))
	}

	if !collect.Proposals.Disabled {
		app.independent = append(app.independent, proposals.NewCollector(
			infra.Chamber, infra.Archive, proposalRepo, legislatorRepo,
			proposals.CollectorOptions{
				Convention:    cfg.Sources.Chamber.Pagination,
				PageSize:      cfg.Sources.Chamber.PageSize,
				MaxRecords:    collect.Proposals.MaxRecords,
				CacheTTL:      collect.Proposals.CacheTTLDuration(),
				Year:          collect.Year,
				Kinds:         collect.ProposalTypes,
				DocumentKinds: collect.DocumentTypes,
				ErrorSamples:  collect.ErrorSamples,
			},
			logger,
		))
	}

	if !collect.Votes.Disabled {
		app.dependent = append(app.dependent, votes.NewCollector(
			infra.Chamber, infra.Archive, voteRepo, legislatorRepo,
			votes.CollectorOptions{
				Convention:   cfg.Sources.Chamber.Pagination,
				PageSize:     cfg.Sources.Chamber.PageSize,
				MaxRecords:   collect.Votes.MaxRecords,
				CacheTTL:     collect.Votes.CacheTTLDuration(),
				Year:         collect.Year,
				ErrorSamples: collect.ErrorSamples,
			},
			logger,
		))
	}

	triage := analysis.NewTriage(cfg.Analysis.TriageKeywords, cfg.Analysis.MinSummaryRune)
	analyzer := analysis.NewAnalyzer(analysis.AnalyzerOptions{
		BaseURL: cfg.Analysis.BaseURL,
		Token:   cfg.Analysis.Token,
		Model:   cfg.Analysis.Model,
	}, logger)

	app.analysis = analysis.NewService(
		proposalRepo, resultRepo, triage, analyzer,
		analysis.ServiceOptions{
			Version:        cfg.Analysis.Version,
			MaxConcurrency: cfg.Analysis.MaxConcurrency,
			BatchLimit:     cfg.Analysis.BatchLimit,
			ErrorSamples:   collect.ErrorSamples,
		},
		logger,
	)

	app.scoring = scoring.NewService(
		scoring.NewEngine(&cfg.Methodology),
		legislatorRepo, proposalRepo, amendmentRepo, resultRepo, scoreRepo,
		scoring.ServiceOptions{
			Year:            collect.Year,
			AnalysisVersion: cfg.Analysis.Version,
			ErrorSamples:    collect.ErrorSamples,
		},
		logger,
	)

	return app
}

// pipeline assembles a run. Collection-only runs pass false for the analysis
// and scoring stages.
func (a *application) pipeline(withAnalysis, withScoring bool) *pipeline.Pipeline {
	var analysisStage, scoringStage pipeline.Stage
	if withAnalysis {
		analysisStage = a.analysis.ProcessPending
	}
	if withScoring {
		scoringStage = a.scoring.ScoreAll
	}

	return pipeline.New(
		a.reference, a.independent, a.dependent,
		analysisStage, scoringStage,
		a.runs,
		pipeline.Options{FailureThreshold: a.cfg.Collect.FailureThreshold},
		a.infra.Logger,
	)
}

func (a *application) scheduler() *pipeline.Scheduler {
	return pipeline.NewScheduler(a.pipeline(true, true), a.cfg.Scheduler.Spec, a.infra.Logger)
}

func (a *application) collectOnly(ctx context.Context) (*pipeline.Run, error) {
	return a.pipeline(false, false).Run(ctx)
}

func (a *application) fullRun(ctx context.Context) (*pipeline.Run, error) {
	return a.pipeline(true, true).Run(ctx)
}
