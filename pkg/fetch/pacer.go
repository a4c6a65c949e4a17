package fetch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer is the single pacing gate for one external source. Every client
// hitting that source shares the same Pacer, so the aggregate call rate,
// not each collector's individual rate, respects the source's limit.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacing gate enforcing at least minDelay between calls.
// A non-positive delay disables pacing.
func NewPacer(minDelay time.Duration) *Pacer {
	if minDelay <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(minDelay), 1)}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
