package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/enrich"
)

// Run executes the enrich command.
func (c *EnrichCmd) Run(deps *Dependencies) error {
	limit := c.Limit
	if limit <= 0 && deps.Config != nil {
		limit = deps.Config.Enrich.Limit
	}
	opts := lexicon.EnrichOptions{Limit: limit, DryRun: c.DryRun}
	if c.StaleDays > 0 {
		before := time.Now().UTC().Add(-time.Duration(c.StaleDays) * 24 * time.Hour)
		opts.StaleBefore = &before
	}

	res, err := deps.Enricher.Enrich(deps.Ctx, opts)
	if err != nil {
		return fail(deps, err)
	}

	prefix := ""
	if res.DryRun {
		prefix = "[dry run] "
	}
	fmt.Fprintf(deps.Stdout, "%sEnriched %d of %d items (%d unchanged, %d failed)\n",
		prefix, res.Enriched, res.Selected, res.Unchanged, res.Failed)
	return nil
}

// ProgressPrinter returns a progress function that prints one line per
// processed item.
func ProgressPrinter(w io.Writer) enrich.ProgressFunc {
	return func(ev enrich.ProgressEvent) {
		switch ev.Outcome {
		case enrich.OutcomeEnriched:
			fmt.Fprintf(w, "  [%d/%d] %s: %d tags\n", ev.Completed, ev.Total, ev.Title, ev.Tags)
		case enrich.OutcomeUnchanged:
			fmt.Fprintf(w, "  [%d/%d] %s: unchanged\n", ev.Completed, ev.Total, ev.Title)
		default:
			fmt.Fprintf(w, "  [%d/%d] %s: failed: %s\n", ev.Completed, ev.Total, ev.Title, lexicon.ErrorMessage(ev.Err))
		}
	}
}
