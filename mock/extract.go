package mock

import (
	"context"

	"github.com/fwojciec/lexicon"
)

var (
	_ lexicon.Fetcher   = (*Fetcher)(nil)
	_ lexicon.Extractor = (*Extractor)(nil)
	_ lexicon.Converter = (*Converter)(nil)
)

// Fetcher is a mock implementation of lexicon.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

// Extractor is a mock implementation of lexicon.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*lexicon.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*lexicon.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Converter is a mock implementation of lexicon.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
