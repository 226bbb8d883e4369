package audit

import (
	"sort"
	"strings"

	"github.com/fwojciec/lexicon"
)

// Issue labels attached to flagged content.
const (
	IssueMissingTags        = "missing_tags"
	IssueMissingKeywords    = "missing_keywords"
	IssueMissingSummary     = "missing_summary"
	IssueNotEnriched        = "not_enriched"
	IssueTaggingOpportunity = "tagging_opportunity"
	IssueExtractionError    = "extraction_error"
	IssueNoURL              = "no_url"
)

const (
	// opportunityChars is the extracted text length above which an item
	// without keywords counts as a tagging opportunity.
	opportunityChars = 100

	flaggedTitleChars = 80
	errorChars        = 60
	unknown           = "Unknown"
)

// Inspect computes the deterministic part of an audit: metrics, flagged
// items, distributions, region coverage and duplicate links.
func Inspect(items []*lexicon.ContentItem) *lexicon.AuditReport {
	r := &lexicon.AuditReport{Flagged: []lexicon.FlaggedContent{}}
	r.Metrics.Total = len(items)

	types, regions, platforms := newCounter(), newCounter(), newCounter()
	covered := make(map[string]bool)

	for _, item := range items {
		types.add(orUnknown(item.Type))
		regions.add(orUnknown(item.Region))
		platforms.add(orUnknown(item.Platform))
		if code := strings.ToUpper(strings.TrimSpace(item.Region)); code != "" {
			covered[code] = true
		}

		if f, ok := inspectItem(item, &r.Metrics); ok {
			r.Flagged = append(r.Flagged, f)
		}
	}

	r.TypeDistribution = types.byCount()
	r.RegionDistribution = regions.byCount()
	r.PlatformDistribution = platforms.byCount()
	r.RegionCoverage = coverage(covered)

	r.Duplicates = Duplicates(items)
	for _, g := range r.Duplicates {
		r.Metrics.DuplicateLinks += len(g.IDs) - 1
	}
	return r
}

// inspectItem counts the item's problems into m and returns it flagged
// when it has any.
func inspectItem(item *lexicon.ContentItem, m *lexicon.AuditMetrics) (lexicon.FlaggedContent, bool) {
	var issues []string
	flag := func(counter *int, issue string) {
		*counter++
		issues = append(issues, issue)
	}

	if strings.TrimSpace(item.Tags) == "" {
		flag(&m.MissingTags, IssueMissingTags)
	}
	hasKeywords := len(item.Keywords) > 0
	if !hasKeywords {
		flag(&m.MissingKeywords, IssueMissingKeywords)
	}
	if strings.TrimSpace(item.Summary) == "" && strings.TrimSpace(item.EnhancedSummary) == "" {
		flag(&m.MissingSummaries, IssueMissingSummary)
	}
	if item.EnrichedAt == nil {
		flag(&m.NotEnriched, IssueNotEnriched)
	}
	text := strings.TrimSpace(item.ExtractedText)
	if len(text) > opportunityChars && !hasKeywords {
		flag(&m.TaggingOpportunities, IssueTaggingOpportunity)
	}
	if item.ExtractionError != "" {
		flag(&m.ExtractionErrors, IssueExtractionError+": "+truncate(item.ExtractionError, errorChars))
	}
	if strings.TrimSpace(item.LiveLink) == "" {
		flag(&m.NoURL, IssueNoURL)
	}

	if len(issues) == 0 {
		return lexicon.FlaggedContent{}, false
	}
	title := item.Title
	if title == "" {
		title = "(no title)"
	}
	return lexicon.FlaggedContent{
		ID:                  item.ID,
		Title:               truncate(title, flaggedTitleChars),
		Type:                orUnknown(item.Type),
		Region:              orUnknown(item.Region),
		Issues:              issues,
		ExtractedTextLength: len(text),
	}, true
}

func coverage(covered map[string]bool) lexicon.InventoryRegionCoverage {
	c := lexicon.InventoryRegionCoverage{Covered: []string{}, Missing: []string{}}
	regions := lexicon.Regions()
	for _, code := range regions {
		if covered[code] {
			c.Covered = append(c.Covered, code)
		} else {
			c.Missing = append(c.Missing, code)
		}
	}
	c.CoveragePct = lexicon.Round(float64(len(c.Covered))/float64(len(regions))*100, 1)
	return c
}

// counter counts keys, breaking ties by first appearance.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) byCount() []lexicon.KeyCount {
	out := make([]lexicon.KeyCount, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, lexicon.KeyCount{Key: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return unknown
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
