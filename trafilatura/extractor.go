// Package trafilatura extracts landing-page text for enrichment using
// go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/lexicon"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ lexicon.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura. Comments and tables are dropped since
// only prose feeds the summary prompt.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{opts: trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   true,
	}}
}

// Extract returns the page's title, description and main content.
func (e *Extractor) Extract(rawHTML string) (*lexicon.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, lexicon.Errorf(lexicon.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, lexicon.Errorf(lexicon.ENOTFOUND, "no main content: %v", err)
	}
	if result.ContentNode == nil {
		return nil, lexicon.Errorf(lexicon.ENOTFOUND, "no main content")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, err
	}

	return &lexicon.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		Description: strings.TrimSpace(result.Metadata.Description),
		ContentHTML: buf.String(),
	}, nil
}
