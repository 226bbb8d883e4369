package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/lexicon"
)

var _ lexicon.Extractor = (*Extractor)(nil)

// DefaultMinContentChars is the shortest text accepted as main content.
const DefaultMinContentChars = 80

// boilerplate is removed before any content selector runs.
const boilerplate = "script, style, noscript, template, iframe, svg, nav, header, footer, form, " +
	".hs-cta-wrapper, .hs_cos_wrapper_type_cta, .cookie-banner, #hs-eu-cookie-confirmation, [aria-hidden='true']"

// fallbackSelectors apply to every platform after its own selectors.
var fallbackSelectors = []string{"main", "article", "[role='main']", "#content", ".content", "body"}

// Extractor pulls the main content out of a landing page using the
// content selectors registered for the page's platform. It is the last
// extractor in the chain; it succeeds on most pages with any body text.
type Extractor struct {
	detector  *Detector
	selectors map[Platform][]string
	minChars  int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMinContentChars sets the shortest text accepted as main content.
func WithMinContentChars(n int) Option {
	return func(e *Extractor) {
		e.minChars = n
	}
}

// NewExtractor creates an Extractor with selectors for the known platforms.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		detector: NewDetector(),
		selectors: map[Platform][]string{
			PlatformHubSpot:   {".hs_cos_wrapper_type_rich_text", ".body-container-wrapper"},
			PlatformWordPress: {".entry-content", ".post-content", "article"},
			PlatformWebflow:   {".w-richtext", "main"},
		},
		minChars: DefaultMinContentChars,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register sets the content selectors for a platform, replacing any
// registered before. Selectors are tried in order.
func (e *Extractor) Register(p Platform, selectors ...string) {
	e.selectors[p] = selectors
}

// Extract returns the page's title, description and main content.
func (e *Extractor) Extract(html string) (*lexicon.ExtractResult, error) {
	if strings.TrimSpace(html) == "" {
		return nil, lexicon.Errorf(lexicon.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, lexicon.Errorf(lexicon.EINVALID, "failed to parse HTML: %v", err)
	}

	platform := e.detector.detect(doc)
	result := &lexicon.ExtractResult{
		Title:       title(doc),
		Description: description(doc),
	}

	doc.Find(boilerplate).Remove()

	candidates := append(append([]string{}, e.selectors[platform]...), fallbackSelectors...)
	for _, selector := range candidates {
		content, ok := e.collect(doc, selector)
		if ok {
			result.ContentHTML = content
			return result, nil
		}
	}
	return nil, lexicon.Errorf(lexicon.ENOTFOUND, "no main content")
}

// collect joins the outer HTML of every top-level match of selector, if
// the matches hold enough text together.
func (e *Extractor) collect(doc *goquery.Document, selector string) (string, bool) {
	matches := doc.Find(selector)
	if matches.Length() == 0 {
		return "", false
	}

	var parts []string
	chars := 0
	matches.Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(selector).Length() > 0 {
			return
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		h, err := goquery.OuterHtml(s)
		if err != nil {
			return
		}
		chars += utf8.RuneCountInString(text)
		parts = append(parts, h)
	})

	if chars < e.minChars {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}

func title(doc *goquery.Document) string {
	if t, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func description(doc *goquery.Document) string {
	for _, selector := range []string{"meta[name='description']", "meta[property='og:description']"} {
		if d, ok := doc.Find(selector).Attr("content"); ok && strings.TrimSpace(d) != "" {
			return strings.TrimSpace(d)
		}
	}
	return ""
}
