// Package htmltomarkdown turns extracted landing-page HTML into compact
// Markdown for enrichment prompts.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/fwojciec/lexicon"
)

var _ lexicon.Converter = (*Converter)(nil)

var (
	images     = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	links      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	blankLines = regexp.MustCompile(`\n(?:[ \t]*\n){2,}`)
)

// Converter wraps html-to-markdown. Images are dropped and links are
// reduced to their anchor text.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into prompt-ready Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", lexicon.Errorf(lexicon.EINVALID, "empty HTML input")
	}

	md, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	md = images.ReplaceAllString(md, "")
	md = links.ReplaceAllString(md, "$1")
	md = blankLines.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md), nil
}
