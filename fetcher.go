package lexicon

import "context"

// Fetcher retrieves the HTML behind a content item's live link.
type Fetcher interface {
	// Fetch returns the raw HTML at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)
}
