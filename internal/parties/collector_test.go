package parties_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/tribuna-project/tribuna/internal/parties"
	"github.com/tribuna-project/tribuna/pkg/archive"
	"github.com/tribuna-project/tribuna/pkg/fetch"
	"github.com/tribuna-project/tribuna/pkg/lifecycle"
	"github.com/tribuna-project/tribuna/pkg/repository"
)

type fakeStore struct {
	mu      sync.Mutex
	upserts []parties.Party
}

func (f *fakeStore) Upsert(ctx context.Context, p parties.Party) (repository.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, p)
	return repository.Inserted, nil
}

type fakeArchive struct {
	mu     sync.Mutex
	stored []archive.Locator
}

func (f *fakeArchive) Start(lc *lifecycle.Coordinator) error { return nil }

func (f *fakeArchive) Store(ctx context.Context, category, period, identity string, payload []byte) (archive.Locator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	loc := archive.Locator{Category: category, Period: period, Identity: identity}
	f.stored = append(f.stored, loc)
	return loc, nil
}

func (f *fakeArchive) Retrieve(ctx context.Context, loc archive.Locator) ([]byte, error) {
	return nil, archive.ErrNotFound
}

func (f *fakeArchive) Exists(ctx context.Context, loc archive.Locator) (bool, error) {
	return false, nil
}

func newClient(t *testing.T, baseURL string) *fetch.Client {
	t.Helper()

	cfg := &fetch.Config{BaseURL: baseURL}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	cfg.BaseURL = baseURL

	client, err := fetch.NewClient(cfg, fetch.NewPacer(0), fetch.NewCache(), slog.Default())
	if err != nil {
		t.Fatalf("client init failed: %v", err)
	}
	return client
}

// page builds a full chamber-style page of n records where the record at
// broken (if >= 0) is missing its abbreviation.
func page(n, broken int) string {
	records := make([]string, n)
	for i := 0; i < n; i++ {
		sigla := fmt.Sprintf("P%03d", i)
		if i == broken {
			sigla = ""
		}
		records[i] = fmt.Sprintf(`{"id":%d,"sigla":"%s","nome":"Partido %d"}`, i+1, sigla, i)
	}
	return `{"dados":[` + strings.Join(records, ",") + `]}`
}

func TestCollectIsolatesBadRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pagina") == "1" {
			fmt.Fprint(w, page(100, 42))
			return
		}
		fmt.Fprint(w, `{"dados":[]}`)
	}))
	defer server.Close()

	store := &fakeStore{}
	blobs := &fakeArchive{}
	collector := parties.NewCollector(
		newClient(t, server.URL), blobs, store,
		parties.CollectorOptions{PageSize: 100, Year: 2025, ErrorSamples: 5},
		slog.Default(),
	)

	report := collector.Collect(context.Background())

	if report.Aborted != "" {
		t.Fatalf("collection aborted: %s", report.Aborted)
	}
	if got := report.Counts.Skipped; got != 1 {
		t.Errorf("skipped got %d, want 1", got)
	}
	if got := report.Counts.Failed; got != 0 {
		t.Errorf("failed got %d, want 0", got)
	}
	if got := report.Counts.Upserted(); got != 99 {
		t.Errorf("upserted got %d, want 99", got)
	}
	if got := len(store.upserts); got != 99 {
		t.Errorf("stored records got %d, want 99", got)
	}
	if len(blobs.stored) == 0 {
		t.Error("expected raw pages archived")
	}
}

func TestCollectHonorsPaginationConvention(t *testing.T) {
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		fmt.Fprint(w, `{"dados":[{"id":1,"sigla":"ABC","nome":"Partido ABC"}]}`)
	}))
	defer server.Close()

	collector := parties.NewCollector(
		newClient(t, server.URL), &fakeArchive{}, &fakeStore{},
		parties.CollectorOptions{
			Convention: fetch.PaginationOffset,
			PageSize:   50,
			Year:       2025,
		},
		slog.Default(),
	)

	report := collector.Collect(context.Background())

	if report.Aborted != "" {
		t.Fatalf("collection aborted: %s", report.Aborted)
	}
	if len(queries) != 1 {
		t.Fatalf("requests got %d, want 1", len(queries))
	}
	if !strings.Contains(queries[0], "offset=0") || !strings.Contains(queries[0], "limit=50") {
		t.Errorf("query %q missing offset/limit parameters", queries[0])
	}
	if strings.Contains(queries[0], "pagina=") {
		t.Errorf("query %q uses page convention", queries[0])
	}
}
