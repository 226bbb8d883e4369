package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fwojciec/lexicon"
)

// Run executes the maintain command. A halted run is returned as an error.
func (c *MaintainCmd) Run(deps *Dependencies) error {
	run, err := deps.Maintainer.Run(deps.Ctx, lexicon.RunOptions{
		Mode:        lexicon.Mode(c.Mode),
		Skip:        c.Skip,
		StopOnError: c.StopOnError,
		DryRun:      c.DryRun,
		EnrichLimit: c.EnrichLimit,
	})
	if err != nil {
		return fail(deps, err)
	}

	PrintRun(deps.Stdout, run)
	if err := save(deps, c.Output, run); err != nil {
		return err
	}
	if run.Verdict == lexicon.RunHalted {
		return lexicon.Errorf(lexicon.EUNAVAILABLE, "maintenance halted at %s", run.StoppedAt)
	}
	return nil
}

// PrintRun writes a console summary of a maintenance run.
func PrintRun(w io.Writer, run *lexicon.MaintenanceRun) {
	mode := string(run.Mode)
	if run.DryRun {
		mode += ", dry run"
	}
	fmt.Fprintf(w, "Maintenance (%s): %s in %s\n", mode, strings.ToUpper(string(run.Verdict)), run.Duration.Round(time.Millisecond))
	for _, s := range run.Steps {
		fmt.Fprintf(w, "  [%-7s] %-18s %s\n", s.Status, s.Name, s.Duration.Round(time.Millisecond))
		for _, issue := range s.Issues {
			fmt.Fprintf(w, "            %s\n", issue)
		}
	}
	if run.StoppedAt != "" {
		fmt.Fprintf(w, "Stopped at %s\n", run.StoppedAt)
	}
	if d := run.Delta; d != nil {
		if d.ZeroResultRateChange != nil {
			fmt.Fprintf(w, "Zero-result rate change: %+.2f pts\n", *d.ZeroResultRateChange)
		}
		if d.NeverEnrichedChange != nil {
			fmt.Fprintf(w, "Never-enriched change: %+d\n", *d.NeverEnrichedChange)
		}
	}
}
