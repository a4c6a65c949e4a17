package fetch

import "fmt"

// Kind classifies a fetch failure. Retry policy hangs off the kind:
// RateLimited, ServerError, and Timeout are retried with backoff up to the
// configured bound; Malformed and ClientRejected are never retried.
type Kind int

const (
	// KindRateLimited indicates the source returned 429.
	KindRateLimited Kind = iota
	// KindServerError indicates a 5xx response.
	KindServerError
	// KindTimeout indicates the request exceeded its deadline.
	KindTimeout
	// KindMalformed indicates the response body was not valid JSON.
	KindMalformed
	// KindClientRejected indicates a non-429 4xx response. Fatal for the page.
	KindClientRejected
)

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed"
	case KindClientRejected:
		return "client_rejected"
	default:
		return "unknown"
	}
}

// Error is a typed fetch failure surfaced after local retries are exhausted.
type Error struct {
	Kind     Kind
	Status   int
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.Endpoint, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Endpoint, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Endpoint, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure kind is transient.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindRateLimited, KindServerError, KindTimeout:
		return true
	default:
		return false
	}
}
