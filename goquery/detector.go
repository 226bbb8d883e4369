// Package goquery extracts landing-page content with CSS selectors tuned
// to the platforms the marketing site is published on.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Platform identifies the site builder that produced a landing page.
type Platform string

// Platform constants.
const (
	PlatformUnknown   Platform = ""
	PlatformHubSpot   Platform = "hubspot"
	PlatformWordPress Platform = "wordpress"
	PlatformWebflow   Platform = "webflow"
)

// Detector identifies the publishing platform of a landing page from its
// generator meta tag and platform-specific markup.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect parses html and returns its platform, or PlatformUnknown.
func (d *Detector) Detect(html string) Platform {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return PlatformUnknown
	}
	return d.detect(doc)
}

func (d *Detector) detect(doc *goquery.Document) Platform {
	if p := d.detectFromMetaGenerator(doc); p != PlatformUnknown {
		return p
	}

	// HubSpot CMS wraps every module in hs_cos_wrapper.
	if hasSelector(doc, ".hs_cos_wrapper") ||
		hasSelector(doc, "body.hs-landing-page") ||
		hasSelector(doc, "script[src*='js.hs-scripts.com']") {
		return PlatformHubSpot
	}

	if hasSelector(doc, "link[href*='/wp-content/']") ||
		hasSelector(doc, "script[src*='/wp-includes/']") ||
		hasSelector(doc, ".entry-content") && hasSelector(doc, "body[class*='wp-']") {
		return PlatformWordPress
	}

	if hasSelector(doc, "html[data-wf-page]") ||
		hasSelector(doc, "html[data-wf-site]") {
		return PlatformWebflow
	}

	return PlatformUnknown
}

func (d *Detector) detectFromMetaGenerator(doc *goquery.Document) Platform {
	generator := ""
	doc.Find("meta[name='generator']").Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			generator = strings.ToLower(content)
		}
	})

	switch {
	case generator == "":
		return PlatformUnknown
	case strings.Contains(generator, "hubspot"):
		return PlatformHubSpot
	case strings.Contains(generator, "wordpress"):
		return PlatformWordPress
	case strings.Contains(generator, "webflow"):
		return PlatformWebflow
	}
	return PlatformUnknown
}

func hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}
