package scrape

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a fixed delay between successive requests to the same
// site. The limiter starts with one free slot, so the first Wait returns
// immediately and every later Wait blocks until the delay has elapsed
// since the previous one.
type Pacer struct {
	limiter *rate.Limiter
}

func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the configured delay has passed since the previous
// call, or the context is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
