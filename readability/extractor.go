// Package readability is the fallback landing-page extractor, used when
// trafilatura finds no main content.
package readability

import (
	"strings"

	"github.com/fwojciec/lexicon"
	"github.com/go-shiori/go-readability"
)

var _ lexicon.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article title, excerpt and content.
func (e *Extractor) Extract(rawHTML string) (*lexicon.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, lexicon.Errorf(lexicon.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, lexicon.Errorf(lexicon.ENOTFOUND, "no readable content: %v", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, lexicon.Errorf(lexicon.ENOTFOUND, "no readable content")
	}

	return &lexicon.ExtractResult{
		Title:       article.Title,
		Description: article.Excerpt,
		ContentHTML: article.Content,
	}, nil
}
