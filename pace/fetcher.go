package pace

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/lexicon"
	"golang.org/x/time/rate"
)

var _ lexicon.Fetcher = (*Fetcher)(nil)

// HostLimiter provides per-host rate limiting using token buckets.
// Each host gets its own limiter with a burst of 1.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewHostLimiter creates a new HostLimiter with the given requests per second.
func NewHostLimiter(rps float64) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to host.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	h.mu.Lock()
	limiter, ok := h.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(h.rps), 1)
		h.limiters[host] = limiter
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}

// Fetcher limits fetches per host and optionally retries failures.
type Fetcher struct {
	next    lexicon.Fetcher
	limiter *HostLimiter

	// Delays between attempts. Nil means a single attempt.
	Delays []time.Duration
}

// NewFetcher wraps next with per-host limiting. It makes a single attempt
// per URL until Delays is set.
func NewFetcher(next lexicon.Fetcher, limiter *HostLimiter) *Fetcher {
	return &Fetcher{next: next, limiter: limiter}
}

// Fetch retrieves rawURL, retrying on error until the delays run out.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	maxAttempts := len(f.Delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, host); err != nil {
				return "", err
			}
		}

		html, err := f.next.Fetch(ctx, rawURL)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.Delays[attempt]):
		}
	}

	return "", lastErr
}
