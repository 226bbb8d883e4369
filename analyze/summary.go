package analyze

import (
	"fmt"
	"strings"

	"github.com/fwojciec/lexicon"
)

// Summarize builds the deterministic executive summary from the numeric
// findings of a report.
func Summarize(r *lexicon.AnalysisReport) string {
	parts := []string{fmt.Sprintf("Analyzed %d total queries.", r.Metrics.TotalQueries)}

	if len(r.Popularity) > 0 {
		top := make([]string, 0, 3)
		for _, p := range r.Popularity[:min(3, len(r.Popularity))] {
			top = append(top, fmt.Sprintf("%q (%dx)", p.Query, p.Count))
		}
		parts = append(parts, fmt.Sprintf("Top searches: %s.", strings.Join(top, ", ")))
	}

	if high := countSeverity(r.Gaps, lexicon.GapHigh); high > 0 {
		parts = append(parts, fmt.Sprintf("%d HIGH priority content gaps identified.", high))
	}

	if len(r.Competitors.Competitors) > 0 {
		c := r.Competitors.Competitors[0]
		parts = append(parts, fmt.Sprintf("Most asked competitor: %s (%dx).", c.Name, c.MentionCount))
	}

	if len(r.Regions.Regions) > 0 {
		s := r.Regions.Regions[0]
		parts = append(parts, fmt.Sprintf("Most searched region: %s (%dx).", s.Region, s.QueryCount))
	}

	return strings.Join(parts, " ")
}

func countSeverity(gaps []lexicon.ContentGap, s lexicon.GapSeverity) int {
	n := 0
	for _, g := range gaps {
		if g.Severity == s {
			n++
		}
	}
	return n
}

// ZeroResultRate returns the percentage of zero-result queries, rounded
// to two decimals.
func ZeroResultRate(m lexicon.AnalysisMetrics) float64 {
	if m.TotalQueries == 0 {
		return 0
	}
	return lexicon.Round(float64(m.ZeroResultCount)/float64(m.TotalQueries)*100, 2)
}

// Compare diffs a report against the one before it.
func Compare(prev, cur *lexicon.AnalysisReport) lexicon.ReportDelta {
	d := lexicon.ReportDelta{
		PreviousID:           prev.ID,
		CurrentID:            cur.ID,
		TotalQueriesChange:   cur.Metrics.TotalQueries - prev.Metrics.TotalQueries,
		ZeroResultChange:     cur.Metrics.ZeroResultCount - prev.Metrics.ZeroResultCount,
		ZeroResultRateChange: lexicon.Round(ZeroResultRate(cur.Metrics)-ZeroResultRate(prev.Metrics), 2),
		GapCountChange:       len(cur.Gaps) - len(prev.Gaps),
		HighGapChange:        countSeverity(cur.Gaps, lexicon.GapHigh) - countSeverity(prev.Gaps, lexicon.GapHigh),
		NewGaps:              []string{},
		ResolvedGaps:         []string{},
	}

	before := make(map[string]struct{}, len(prev.Gaps))
	for _, g := range prev.Gaps {
		before[g.Query] = struct{}{}
	}
	after := make(map[string]struct{}, len(cur.Gaps))
	for _, g := range cur.Gaps {
		after[g.Query] = struct{}{}
		if _, ok := before[g.Query]; !ok {
			d.NewGaps = append(d.NewGaps, g.Query)
		}
	}
	for _, g := range prev.Gaps {
		if _, ok := after[g.Query]; !ok {
			d.ResolvedGaps = append(d.ResolvedGaps, g.Query)
		}
	}
	return d
}
