package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/lexicon"
)

// maxPrintedFlags bounds the flagged items listed on the console.
const maxPrintedFlags = 20

// Run executes the audit command.
func (c *AuditCmd) Run(deps *Dependencies) error {
	r, err := deps.Auditor.Audit(deps.Ctx, lexicon.AuditOptions{SkipAI: c.SkipAI, DryRun: c.DryRun})
	if err != nil {
		return fail(deps, err)
	}

	PrintAudit(deps.Stdout, r)
	return save(deps, c.Output, r)
}

// PrintAudit writes a console summary of an audit.
func PrintAudit(w io.Writer, r *lexicon.AuditReport) {
	if r.ID != "" {
		fmt.Fprintf(w, "Audit %s\n", r.ID)
	}
	m := r.Metrics
	fmt.Fprintf(w, "Content items:         %d\n", m.Total)
	fmt.Fprintf(w, "Missing tags:          %d\n", m.MissingTags)
	fmt.Fprintf(w, "Missing keywords:      %d\n", m.MissingKeywords)
	fmt.Fprintf(w, "Missing summaries:     %d\n", m.MissingSummaries)
	fmt.Fprintf(w, "Not enriched:          %d\n", m.NotEnriched)
	fmt.Fprintf(w, "Tagging opportunities: %d\n", m.TaggingOpportunities)
	fmt.Fprintf(w, "Extraction errors:     %d\n", m.ExtractionErrors)
	fmt.Fprintf(w, "No URL:                %d\n", m.NoURL)
	fmt.Fprintf(w, "Duplicate links:       %d\n", m.DuplicateLinks)

	fmt.Fprintf(w, "\nRegion coverage: %.1f%% (%d missing)\n", r.RegionCoverage.CoveragePct, len(r.RegionCoverage.Missing))

	for _, g := range r.Duplicates {
		fmt.Fprintf(w, "Duplicate %s: %d items\n", g.Link, len(g.IDs))
	}

	if len(r.Flagged) > 0 {
		fmt.Fprintf(w, "\nFlagged (%d):\n", len(r.Flagged))
		for _, f := range r.Flagged[:min(maxPrintedFlags, len(r.Flagged))] {
			fmt.Fprintf(w, "  %s  %s: %d issues\n", f.ID, f.Title, len(f.Issues))
		}
	}

	fmt.Fprintf(w, "\nAI notes: %s\n", aiLine(r.AI.AIStatus))
	if r.AI.Summary != "" {
		fmt.Fprintf(w, "  %s\n", r.AI.Summary)
	}
	for _, p := range r.AI.Priorities {
		fmt.Fprintf(w, "  - %s\n", p)
	}
}
