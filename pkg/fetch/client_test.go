package fetch_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/tribuna-project/tribuna/pkg/fetch"
)

func newTestClient(t *testing.T, baseURL string, maxRetries int) *fetch.Client {
	t.Helper()

	cfg := &fetch.Config{BaseURL: baseURL, MaxRetries: maxRetries}
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

func TestGetSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"dados":[{"id":1}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	payload, err := client.Get(context.Background(), "/items", nil, 0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !json.Valid(payload.Body) {
		t.Error("expected valid JSON body")
	}
	if payload.FetchedAt.IsZero() {
		t.Error("expected fetch timestamp")
	}
}

func TestGetClientRejectedNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	_, err := client.Get(context.Background(), "/missing", nil, 0)

	var fe *fetch.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fetch.Error, got %v", err)
	}
	if fe.Kind != fetch.KindClientRejected {
		t.Errorf("got kind %s, want client_rejected", fe.Kind)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}
}

func TestGetServerErrorRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"dados":[]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 1)

	if _, err := client.Get(context.Background(), "/flaky", nil, 0); err != nil {
		t.Fatalf("get failed after retry: %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("server hit %d times, want 2", got)
	}
}

func TestGetMalformedBody(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	_, err := client.Get(context.Background(), "/items", nil, 0)

	var fe *fetch.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *fetch.Error, got %v", err)
	}
	if fe.Kind != fetch.KindMalformed {
		t.Errorf("got kind %s, want malformed", fe.Kind)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}
}

func TestDownloadSkipsJSONValidation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "%PDF-1.7 raw bytes")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	payload, err := client.Download(context.Background(), server.URL+"/doc.pdf")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if string(payload.Body) != "%PDF-1.7 raw bytes" {
		t.Errorf("unexpected body %q", payload.Body)
	}
}

func TestPaginatePageConvention(t *testing.T) {
	pages := map[string]string{
		"1": `{"dados":[{"id":1},{"id":2}]}`,
		"2": `{"dados":[{"id":3}]}`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("itens") != "2" {
			t.Errorf("missing itens parameter in %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, pages[r.URL.Query().Get("pagina")])
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	var visited []int
	err := client.Paginate(context.Background(), "/items", nil, fetch.PageOptions{PageSize: 2},
		func(payload *fetch.Payload, page int) (int, error) {
			visited = append(visited, page)
			var envelope struct {
				Dados []json.RawMessage `json:"dados"`
			}
			if err := json.Unmarshal(payload.Body, &envelope); err != nil {
				return 0, err
			}
			return len(envelope.Dados), nil
		})
	if err != nil {
		t.Fatalf("paginate failed: %v", err)
	}

	if len(visited) != 2 || visited[0] != 1 || visited[1] != 2 {
		t.Errorf("visited pages %v, want [1 2]", visited)
	}
}

func TestPaginateOffsetConvention(t *testing.T) {
	var offsets []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offsets = append(offsets, r.URL.Query().Get("offset"))
		if r.URL.Query().Get("offset") == "0" {
			fmt.Fprint(w, `[{"id":1},{"id":2}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	opts := fetch.PageOptions{Convention: fetch.PaginationOffset, PageSize: 2}
	err := client.Paginate(context.Background(), "/items", nil, opts,
		func(payload *fetch.Payload, page int) (int, error) {
			var records []json.RawMessage
			if err := json.Unmarshal(payload.Body, &records); err != nil {
				return 0, err
			}
			return len(records), nil
		})
	if err != nil {
		t.Fatalf("paginate failed: %v", err)
	}

	if len(offsets) != 2 || offsets[0] != "0" || offsets[1] != "2" {
		t.Errorf("offsets %v, want [0 2]", offsets)
	}
}

func TestPaginateMaxRecordsCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"dados":[{"id":1},{"id":2}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	pages := 0
	opts := fetch.PageOptions{PageSize: 2, MaxRecords: 4}
	err := client.Paginate(context.Background(), "/items", nil, opts,
		func(payload *fetch.Payload, page int) (int, error) {
			pages++
			return 2, nil
		})
	if err != nil {
		t.Fatalf("paginate failed: %v", err)
	}

	if pages != 2 {
		t.Errorf("visited %d pages, want 2", pages)
	}
}
