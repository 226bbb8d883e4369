package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/diagnose"
)

// Run executes the diagnose command.
func (c *DiagnoseCmd) Run(deps *Dependencies) error {
	if c.Worst > 0 {
		return c.worst(deps)
	}

	opts := diagnose.Options{
		Query:   c.Query,
		AutoFix: c.AutoFix,
		DryRun:  c.DryRun,
		SkipAI:  c.SkipAI,
	}

	var diag *lexicon.Diagnosis
	var err error
	switch {
	case c.QueryID != "":
		diag, err = deps.Diagnoser.DiagnoseLogEntry(deps.Ctx, c.QueryID, opts)
	case strings.TrimSpace(c.Query) != "":
		diag, err = deps.Diagnoser.Diagnose(deps.Ctx, opts)
	default:
		err = lexicon.Errorf(lexicon.EINVALID, "a query or --query-id is required")
	}
	if err != nil {
		return fail(deps, err)
	}

	PrintDiagnosis(deps.Stdout, diag)
	return save(deps, c.Output, diag)
}

func (c *DiagnoseCmd) worst(deps *Dependencies) error {
	worst, err := deps.Diagnoser.Worst(deps.Ctx, c.Days, c.Worst)
	if err != nil {
		return fail(deps, err)
	}
	if len(worst) == 0 {
		fmt.Fprintf(deps.Stdout, "No zero-result queries in the last %d days.\n", c.Days)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Worst zero-result queries (last %d days):\n", c.Days)
	for i, q := range worst {
		fmt.Fprintf(deps.Stdout, "%3d. %-50s %dx\n", i+1, q.Key, q.Count)
	}
	return nil
}

// PrintDiagnosis writes a human-readable diagnosis.
func PrintDiagnosis(w io.Writer, d *lexicon.Diagnosis) {
	fmt.Fprintf(w, "Query: %q\n", d.Query)
	if d.LogEntryID != "" {
		fmt.Fprintf(w, "Log entry: %s\n", d.LogEntryID)
	}
	fmt.Fprintf(w, "Tokens: %s\n", strings.Join(d.Tokens, ", "))

	fmt.Fprintf(w, "\nSearch: %d results\n", d.Search.ResultCount)
	if d.Search.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", d.Search.Error)
	}
	for i, r := range d.Search.Results {
		fmt.Fprintf(w, "  %2d. %s [%s] %d keywords\n", i+1, r.Title, r.Type, r.KeywordCount)
	}

	fmt.Fprintf(w, "\nTerminology: %d mappings, %.1f%% of tokens covered\n", d.Trace.TotalMappings, d.Trace.Coverage)
	for _, m := range d.Trace.Matched {
		fmt.Fprintf(w, "  %s -> %s (%s)\n", m.UserTerm, m.CanonicalTerm, m.Category)
	}
	if len(d.Trace.Unmatched) > 0 {
		fmt.Fprintf(w, "  unmatched: %s\n", strings.Join(d.Trace.Unmatched, ", "))
	}

	fmt.Fprintf(w, "\nKeyword overlap: %.2f (%s)\n", d.Overlap.Average, d.Overlap.Quality)

	fmt.Fprintf(w, "\nMissed content: %d items\n", d.Missed.Count)
	if d.Missed.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", d.Missed.Error)
	}
	for _, m := range d.Missed.Items {
		fmt.Fprintf(w, "  - %s [%s]\n", m.Title, m.Type)
	}

	fmt.Fprintf(w, "\nAI diagnosis: %s\n", aiLine(d.AI.AIStatus))
	if d.AI.RootCause != "" {
		fmt.Fprintf(w, "  root cause: %s (%s)\n", d.AI.RootCause, d.AI.Severity)
	}
	for _, f := range d.AI.Fixes {
		fmt.Fprintf(w, "  fix [%s]: %s\n", f.FixType, f.Description)
	}

	if a := d.AutoFix; a != nil {
		fmt.Fprintf(w, "\nAuto-fix: %s", a.Status)
		if a.Reason != "" {
			fmt.Fprintf(w, " (%s)", a.Reason)
		}
		fmt.Fprintln(w)
		if a.Result != nil {
			fmt.Fprintf(w, "  inserted %d, would insert %d, conflicts %d\n", a.Result.Inserted, a.Result.WouldInsert, a.Result.Conflicts)
		}
	}
}

func aiLine(s lexicon.AIStatus) string {
	if s.Reason == "" {
		return s.Status
	}
	return s.Status + " (" + s.Reason + ")"
}
