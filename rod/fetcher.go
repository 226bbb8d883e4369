// Package rod renders landing pages in headless Chrome, for pages whose
// copy is injected by JavaScript and is invisible to a plain HTTP fetch.
package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.Fetcher = (*Fetcher)(nil)

// DefaultRenderTimeout bounds one page render.
const DefaultRenderTimeout = 30 * time.Second

var errClosed = lexicon.Errorf(lexicon.EINVALID, "renderer is closed")

// Fetcher returns the rendered HTML of a page. The browser is launched on
// the first Fetch, so constructing a Fetcher is cheap.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRenderTimeout sets the per-page render timeout.
func WithRenderTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithManager sets the browser manager.
func WithManager(m *BrowserManager) Option {
	return func(f *Fetcher) {
		f.manager = m
	}
}

// NewFetcher creates a new Fetcher. Close must be called when done.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{timeout: DefaultRenderTimeout}
	for _, opt := range opts {
		opt(f)
	}
	if f.manager == nil {
		f.manager = NewBrowserManager()
	}
	return f
}

// Fetch navigates to url, waits for the load event and returns the DOM.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, release, err := f.manager.NewPage()
	if err != nil {
		return "", err
	}
	defer release()

	page = page.Context(ctx).Timeout(f.timeout)

	if err := page.Navigate(url); err != nil {
		return "", renderError(ctx, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", renderError(ctx, url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read rendered page: %w", err)
	}
	return html, nil
}

// renderError keeps caller cancellation visible to errors.Is.
func renderError(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return lexicon.Errorf(lexicon.EUNAVAILABLE, "render %s: %v", url, err)
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
