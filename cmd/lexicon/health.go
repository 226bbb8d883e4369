package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/lexicon"
)

// Run executes the health command. A critical verdict is returned as an
// error so that schedulers see a non-zero exit.
func (c *HealthCmd) Run(deps *Dependencies) error {
	r, err := deps.Health.Check(deps.Ctx)
	if err != nil {
		return fail(deps, err)
	}

	PrintHealth(deps.Stdout, r)
	if err := save(deps, c.Output, r); err != nil {
		return err
	}
	if r.Verdict == lexicon.VerdictCritical {
		return lexicon.Errorf(lexicon.EUNAVAILABLE, "health verdict is %s", r.Verdict)
	}
	return nil
}

// PrintHealth writes a console summary of a health report.
func PrintHealth(w io.Writer, r *lexicon.HealthReport) {
	fmt.Fprintf(w, "Health: %s\n", strings.ToUpper(string(r.Verdict)))
	for _, c := range r.Checks {
		fmt.Fprintf(w, "  [%-7s] %s\n", c.Status, c.Name)
		for _, issue := range c.Issues {
			fmt.Fprintf(w, "            %s\n", issue)
		}
	}

	q := r.QueryQuality
	fmt.Fprintf(w, "\nZero-result rate: %.1f%% today (%d queries), %.1f%% over %d days\n",
		q.Current.ZeroResultRate, q.Current.TotalQueries, q.Baseline.ZeroResultRate, r.BaselineDays)

	f := r.Freshness
	fmt.Fprintf(w, "Content: %d items, %d never enriched, %d stale, %d extraction errors\n",
		f.Total, f.NeverEnriched, f.StaleEnriched, f.ExtractionErrors)

	for _, p := range r.Pipelines {
		last := "never"
		if p.LastRun != nil {
			last = fmt.Sprintf("%.0fh ago", p.AgeHours)
		}
		fmt.Fprintf(w, "Pipeline %s: %s\n", p.Name, last)
	}

	fmt.Fprintf(w, "AI anomalies: %s\n", aiLine(r.AI.AIStatus))
	for _, a := range r.AI.Anomalies {
		fmt.Fprintf(w, "  - %s\n", a.Description)
	}
}
