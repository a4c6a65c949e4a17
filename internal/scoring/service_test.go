package scoring_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/internal/amendments"
	"github.com/tribuna-project/tribuna/internal/analysis"
	"github.com/tribuna-project/tribuna/internal/legislators"
	"github.com/tribuna-project/tribuna/internal/proposals"
	"github.com/tribuna-project/tribuna/internal/scoring"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

type fakeRoster struct {
	refs []legislators.Ref
	err  error
}

func (f *fakeRoster) Refs(ctx context.Context) ([]legislators.Ref, error) {
	return f.refs, f.err
}

type fakeProposalSource struct{ stats proposals.Stats }

func (f *fakeProposalSource) Summarize(ctx context.Context, legislatorID uuid.UUID, year int) (proposals.Stats, error) {
	return f.stats, nil
}

type fakeAmendmentSource struct{ summary amendments.Summary }

func (f *fakeAmendmentSource) Summarize(ctx context.Context, legislatorID uuid.UUID, year int) (amendments.Summary, error) {
	return f.summary, nil
}

type fakeAnalysisSource struct{ summary analysis.Summary }

func (f *fakeAnalysisSource) Summarize(ctx context.Context, legislatorID uuid.UUID, year int, version string, highThreshold int) (analysis.Summary, error) {
	return f.summary, nil
}

type fakeScoreStore struct {
	upserts      []scoring.CompositeScore
	summaryCalls int
	summaryErr   error
}

func (f *fakeScoreStore) Upsert(ctx context.Context, score scoring.CompositeScore) (repository.Outcome, error) {
	f.upserts = append(f.upserts, score)
	return repository.Inserted, nil
}

func (f *fakeScoreStore) PartySummaries(ctx context.Context, version string, year int) ([]scoring.PartySummary, error) {
	f.summaryCalls++
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return []scoring.PartySummary{
		{Abbreviation: "ABC", AverageIndex: 71.3, Legislators: 2},
	}, nil
}

func (f *fakeScoreStore) ListByVersion(ctx context.Context, version string, year int) ([]scoring.CompositeScore, error) {
	scores := make([]scoring.CompositeScore, len(f.upserts))
	copy(scores, f.upserts)
	return scores, nil
}

func newService(t *testing.T, roster *fakeRoster, store *fakeScoreStore) *scoring.Service {
	t.Helper()

	return scoring.NewService(
		defaultEngine(t),
		roster,
		&fakeProposalSource{stats: proposals.Stats{Count: 25, DistinctKinds: 3, ActiveMonths: 4}},
		&fakeAmendmentSource{summary: amendments.Summary{Count: 10, TotalCommitted: 20_000_000, TotalPaid: 15_000_000, DistinctLocations: 5}},
		&fakeAnalysisSource{summary: analysis.Summary{NonTrivial: 6, MeanScore: 64}},
		store,
		scoring.ServiceOptions{Year: 2025, AnalysisVersion: "2025.1", ErrorSamples: 5},
		slog.Default(),
	)
}

func TestScoreAllScoresEveryLegislator(t *testing.T) {
	roster := &fakeRoster{refs: []legislators.Ref{
		{ID: uuid.New(), ExternalID: 100},
		{ID: uuid.New(), ExternalID: 200},
	}}
	store := &fakeScoreStore{}

	report := newService(t, roster, store).ScoreAll(context.Background())

	if report.Aborted != "" {
		t.Fatalf("pass aborted: %s", report.Aborted)
	}
	if got := len(store.upserts); got != 2 {
		t.Fatalf("scored legislators got %d, want 2", got)
	}
	for _, score := range store.upserts {
		if score.Year != 2025 {
			t.Errorf("year got %d, want 2025", score.Year)
		}
		if score.Index < 0 || score.Index > 100 {
			t.Errorf("index %v out of range", score.Index)
		}
	}
	if store.summaryCalls != 1 {
		t.Errorf("party summary calls got %d, want 1", store.summaryCalls)
	}
}

func TestRankingReadsStoredScores(t *testing.T) {
	roster := &fakeRoster{refs: []legislators.Ref{
		{ID: uuid.New(), ExternalID: 100},
		{ID: uuid.New(), ExternalID: 200},
	}}
	store := &fakeScoreStore{}
	service := newService(t, roster, store)

	if report := service.ScoreAll(context.Background()); report.Aborted != "" {
		t.Fatalf("pass aborted: %s", report.Aborted)
	}

	ranking, err := service.Ranking(context.Background())
	if err != nil {
		t.Fatalf("ranking failed: %v", err)
	}
	if got := len(ranking); got != 2 {
		t.Errorf("ranking size got %d, want 2", got)
	}
}

func TestScoreAllAbortedSkipsPartySummary(t *testing.T) {
	roster := &fakeRoster{err: errors.New("connection lost")}
	store := &fakeScoreStore{}

	report := newService(t, roster, store).ScoreAll(context.Background())

	if report.Aborted == "" {
		t.Fatal("expected aborted pass")
	}
	if store.summaryCalls != 0 {
		t.Errorf("party summary calls got %d, want 0", store.summaryCalls)
	}
}

func TestScoreAllCountsPartySummaryFailure(t *testing.T) {
	roster := &fakeRoster{refs: []legislators.Ref{{ID: uuid.New(), ExternalID: 100}}}
	store := &fakeScoreStore{summaryErr: errors.New("relation missing")}

	report := newService(t, roster, store).ScoreAll(context.Background())

	if report.Aborted != "" {
		t.Fatalf("pass aborted: %s", report.Aborted)
	}
	if report.Counts.Failed != 1 {
		t.Errorf("failed got %d, want 1", report.Counts.Failed)
	}
}
