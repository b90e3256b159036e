package scraper

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttle spaces out navigations so a crawl never hammers a police site.
// A nil Throttle never waits.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle allows rps navigations per second with the given burst.
// A non-positive rps disables throttling.
func NewThrottle(rps float64, burst int) *Throttle {
	if rps <= 0 {
		return &Throttle{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until the next navigation may start or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}
