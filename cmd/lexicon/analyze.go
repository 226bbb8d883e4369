package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/analyze"
)

// maxPrintedGaps bounds the gaps listed on the console.
const maxPrintedGaps = 10

// Run executes the analyze command. The new report is compared against
// the most recent persisted one, when there is one.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	var previous *lexicon.AnalysisReport
	if deps.History != nil {
		recent, err := deps.History.Recent(deps.Ctx, 1)
		if err != nil {
			deps.Logger.Warn("load previous report", "error", err)
		} else if len(recent) > 0 {
			previous = recent[0]
		}
	}

	r, err := deps.Analyzer.Analyze(deps.Ctx, lexicon.AnalyzeOptions{
		Window:            lexicon.AnalysisWindow{Days: c.Days},
		SkipAI:            c.SkipAI,
		InsertSuggestions: c.Suggestions,
		DryRun:            c.DryRun,
	})
	if err != nil {
		return fail(deps, err)
	}

	PrintAnalysis(deps.Stdout, r)
	if previous != nil {
		PrintDelta(deps.Stdout, analyze.Compare(previous, r))
	}

	if err := save(deps, c.Output, r); err != nil {
		return err
	}
	if c.CSV != "" {
		written, err := deps.Writer.WritePopularityCSV(c.CSV, r.Popularity)
		if err != nil {
			return fail(deps, err)
		}
		fmt.Fprintf(deps.Stdout, "Popularity ranking saved to %s\n", written)
	}
	return nil
}

// PrintAnalysis writes a console summary of a report.
func PrintAnalysis(w io.Writer, r *lexicon.AnalysisReport) {
	if r.ID != "" {
		fmt.Fprintf(w, "Report %s\n", r.ID)
	}
	m := r.Metrics
	fmt.Fprintf(w, "Queries: %d total, %d unique, %d zero-result (%.2f%%)\n",
		m.TotalQueries, m.UniqueQueries, m.ZeroResultCount, analyze.ZeroResultRate(m))

	if len(r.Gaps) > 0 {
		fmt.Fprintf(w, "\nContent gaps (%d):\n", len(r.Gaps))
		for _, g := range r.Gaps[:min(maxPrintedGaps, len(r.Gaps))] {
			fmt.Fprintf(w, "  [%s] %-40s %dx, %.1f avg results\n",
				strings.ToUpper(string(g.Severity)), g.Query, g.SearchCount, g.AvgRecommendations)
		}
	}

	t := r.Terminology
	fmt.Fprintf(w, "\nTerminology: %d unmapped terms, %d suggestions (%s)\n", len(t.Unmapped), len(t.AISuggestions), aiLine(t.AI))
	if t.Applied != nil {
		fmt.Fprintf(w, "  inserted %d, would insert %d, conflicts %d\n", t.Applied.Inserted, t.Applied.WouldInsert, t.Applied.Conflicts)
	}

	fmt.Fprintf(w, "\n%s\n", r.Summary)
}

// PrintDelta writes the change since the previous report.
func PrintDelta(w io.Writer, d lexicon.ReportDelta) {
	fmt.Fprintf(w, "\nSince report %s:\n", d.PreviousID)
	fmt.Fprintf(w, "  queries %+d, zero-result %+d (rate %+.2f pts), gaps %+d (high %+d)\n",
		d.TotalQueriesChange, d.ZeroResultChange, d.ZeroResultRateChange, d.GapCountChange, d.HighGapChange)
	if len(d.NewGaps) > 0 {
		fmt.Fprintf(w, "  new gaps: %s\n", strings.Join(d.NewGaps, ", "))
	}
	if len(d.ResolvedGaps) > 0 {
		fmt.Fprintf(w, "  resolved gaps: %s\n", strings.Join(d.ResolvedGaps, ", "))
	}
}
