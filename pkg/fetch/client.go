// Package fetch provides a rate-limited, retrying HTTP client for paginated
// JSON sources, with typed failures and a process-local response cache.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Payload is one fetched page: the raw body plus fetch metadata. The body is
// kept verbatim so collectors can archive exactly what the source returned.
type Payload struct {
	Body      []byte
	Endpoint  string
	FetchedAt time.Time
}

// Client fetches JSON payloads from a single external source. All clients
// for the same source share one Pacer so the aggregate call rate respects
// the source's limit.
type Client struct {
	base       *url.URL
	http       *http.Client
	pacer      *Pacer
	cache      *Cache
	maxRetries int
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a client for the configured source. The pacer must be
// the shared gate for that source; cache may be nil to disable caching.
func NewClient(cfg *Config, pacer *Pacer, cache *Cache, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	return &Client{
		base:       base,
		http:       &http.Client{Timeout: cfg.TimeoutDuration()},
		pacer:      pacer,
		cache:      cache,
		maxRetries: cfg.MaxRetries,
		userAgent:  cfg.UserAgent,
		logger:     logger.With("system", "fetch", "source", base.Host),
	}, nil
}

// Get fetches path with params, retrying transient failures with exponential
// backoff up to the configured bound. ttl > 0 consults the response cache
// first. On exhaustion or a fatal failure it returns a *Error.
func (c *Client) Get(ctx context.Context, path string, params url.Values, ttl time.Duration) (*Payload, error) {
	endpoint := c.endpoint(path, params)

	return c.cache.GetOrFetch(CacheKey(endpoint, nil), ttl, func() (*Payload, error) {
		return c.fetch(ctx, endpoint, true)
	})
}

// Download fetches an absolute URL as raw bytes through the same pacing and
// retry policy as Get. The body is not validated as JSON and never cached.
func (c *Client) Download(ctx context.Context, rawURL string) (*Payload, error) {
	return c.fetch(ctx, rawURL, false)
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = params.Encode()
	return u.String()
}

func (c *Client) fetch(ctx context.Context, endpoint string, wantJSON bool) (*Payload, error) {
	var payload *Payload

	operation := func() error {
		if err := c.pacer.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		p, err := c.doRequest(ctx, endpoint, wantJSON)
		if err != nil {
			var fe *Error
			if errors.As(err, &fe) && !fe.Retryable() {
				return backoff.Permanent(err)
			}
			c.logger.Warn("fetch attempt failed", "endpoint", endpoint, "error", err)
			return err
		}

		payload = p
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return payload, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, wantJSON bool) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Kind: KindClientRejected, Endpoint: endpoint, Err: err}
	}

	if wantJSON {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(endpoint, err)
	}
	defer resp.Body.Close()

	if kind, failed := classifyStatus(resp.StatusCode); failed {
		io.Copy(io.Discard, resp.Body)
		return nil, &Error{Kind: kind, Status: resp.StatusCode, Endpoint: endpoint}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(endpoint, err)
	}

	if wantJSON && !json.Valid(body) {
		return nil, &Error{Kind: KindMalformed, Status: resp.StatusCode, Endpoint: endpoint}
	}

	return &Payload{
		Body:      body,
		Endpoint:  endpoint,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func classifyStatus(status int) (Kind, bool) {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited, true
	case status >= 500:
		return KindServerError, true
	case status >= 400:
		return KindClientRejected, true
	default:
		return 0, false
	}
}

func classifyTransportError(endpoint string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Endpoint: endpoint, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Endpoint: endpoint, Err: err}
	}

	return &Error{Kind: KindServerError, Endpoint: endpoint, Err: err}
}
