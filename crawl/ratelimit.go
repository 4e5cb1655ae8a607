package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/meddict"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the request rate the source tolerates without
// throttling. Two requests a second keeps a full listing crawl inside the
// daily budget.
const DefaultRequestsPerSecond = 2.0

var _ meddict.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-domain rate limiting using token buckets.
// Entry pages, listing pages, and image downloads all hit the same host,
// so they share one bucket; the search API lives on its own domain and
// gets its own.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a limiter allowing rps requests per second per
// domain with a burst of 1 (no bursting). A non-positive rps falls back to
// DefaultRequestsPerSecond.
func NewDomainLimiter(rps float64) *DomainLimiter {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
