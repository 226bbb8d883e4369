// Package pace throttles calls to rate-limited upstream services.
//
// Completion and search calls share a single token bucket with a burst of
// one, so consecutive calls are spaced by at least the configured interval.
// Page fetches are limited per host.
package pace

import (
	"context"
	"time"

	"github.com/fwojciec/lexicon"
	"golang.org/x/time/rate"
)

// Compile-time interface verification.
var (
	_ lexicon.Completer = (*Completer)(nil)
	_ lexicon.Searcher  = (*Searcher)(nil)
)

// newLimiter returns a limiter allowing one event per interval. A
// non-positive interval disables pacing.
func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Completer spaces calls to the wrapped Completer. Failed calls are not
// retried.
type Completer struct {
	next    lexicon.Completer
	limiter *rate.Limiter
}

// NewCompleter wraps next so that calls are at least interval apart.
func NewCompleter(next lexicon.Completer, interval time.Duration) *Completer {
	return &Completer{next: next, limiter: newLimiter(interval)}
}

// Complete waits for the limiter and delegates.
func (c *Completer) Complete(ctx context.Context, system, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.next.Complete(ctx, system, prompt)
}

// Searcher spaces calls to the wrapped Searcher.
type Searcher struct {
	next    lexicon.Searcher
	limiter *rate.Limiter
}

// NewSearcher wraps next so that calls are at least interval apart.
func NewSearcher(next lexicon.Searcher, interval time.Duration) *Searcher {
	return &Searcher{next: next, limiter: newLimiter(interval)}
}

// Search waits for the limiter and delegates.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*lexicon.ContentItem, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.next.Search(ctx, query, limit)
}
