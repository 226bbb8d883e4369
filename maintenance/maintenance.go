// Package maintenance runs the scheduled maintenance cycle: health gate,
// log analysis, enrichment, tag hygiene, audits and a closing health check.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.Maintainer = (*Orchestrator)(nil)

// ReasonNotConfigured is recorded for steps whose collaborator is nil.
const ReasonNotConfigured = "not configured"

// Analysis windows, in days, for the two analyzer-backed steps.
const (
	LogAnalysisDays = 1
	ContentGapsDays = 7
)

var daily = []string{
	lexicon.StepHealthCheckPre,
	lexicon.StepLogAnalysis,
	lexicon.StepEnrichment,
	lexicon.StepTagHygiene,
	lexicon.StepHealthCheckPost,
}

// Steps returns the ordered step list for a mode.
func Steps(mode lexicon.Mode) ([]string, error) {
	post := len(daily) - 1
	switch mode {
	case lexicon.ModeDaily:
		return slices.Clone(daily), nil
	case lexicon.ModeWeekly:
		return slices.Insert(slices.Clone(daily), post, lexicon.StepContentAudit, lexicon.StepContentGaps), nil
	case lexicon.ModeFull:
		return slices.Insert(slices.Clone(daily), post, lexicon.StepContentAudit, lexicon.StepContentGaps, lexicon.StepImportAll), nil
	}
	return nil, lexicon.Errorf(lexicon.EINVALID, "unknown maintenance mode %q", mode)
}

// Orchestrator runs maintenance steps strictly in sequence. Any nil
// collaborator causes its step to be recorded as skipped.
type Orchestrator struct {
	Health   lexicon.HealthChecker
	Analyzer lexicon.ReportAnalyzer
	Enricher lexicon.Enricher
	TagFixer lexicon.TagFixer
	Auditor  lexicon.Auditor
	Importer lexicon.Importer

	// Observer, if set, receives every step result as it finishes.
	Observer lexicon.StepObserver

	Logger *slog.Logger
	Clock  func() time.Time
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o *Orchestrator) now() time.Time {
	if o.Clock == nil {
		return time.Now().UTC()
	}
	return o.Clock().UTC()
}

// Run executes the steps of opts.Mode minus the skipped ones. Step
// failures are recorded, never returned; only an invalid mode is an error.
func (o *Orchestrator) Run(ctx context.Context, opts lexicon.RunOptions) (*lexicon.MaintenanceRun, error) {
	steps, err := Steps(opts.Mode)
	if err != nil {
		return nil, err
	}
	for _, name := range opts.Skip {
		if !slices.Contains(steps, name) {
			o.logger().Warn("ignoring unknown skip step", "step", name, "mode", opts.Mode)
		}
	}
	steps = slices.DeleteFunc(steps, func(name string) bool {
		return slices.Contains(opts.Skip, name)
	})

	run := &lexicon.MaintenanceRun{
		Mode:      opts.Mode,
		DryRun:    opts.DryRun,
		Steps:     make([]lexicon.StepResult, 0, len(steps)),
		StartedAt: o.now(),
	}

	c := &cycle{Orchestrator: o, opts: opts}
	for _, name := range steps {
		begin := o.now()
		res := c.step(ctx, name)
		res.Name = name
		res.Duration = o.now().Sub(begin)
		if res.Issues == nil {
			res.Issues = []string{}
		}
		run.Steps = append(run.Steps, res)
		if o.Observer != nil {
			o.Observer.ObserveStep(ctx, res)
		}

		if res.Status == lexicon.StatusFail && opts.StopOnError {
			run.StoppedAt = name
			break
		}
	}

	run.Delta = c.delta()
	run.Duration = o.now().Sub(run.StartedAt)
	run.Verdict = verdict(run)
	return run, nil
}

func verdict(run *lexicon.MaintenanceRun) lexicon.RunVerdict {
	if run.StoppedAt != "" {
		return lexicon.RunHalted
	}
	for _, s := range run.Steps {
		if s.Status == lexicon.StatusFail {
			return lexicon.RunCompletedWithErrors
		}
	}
	return lexicon.RunCompleted
}

// cycle holds the state shared between the steps of one run.
type cycle struct {
	*Orchestrator
	opts lexicon.RunOptions

	pre, post *lexicon.HealthReport
}

func (c *cycle) step(ctx context.Context, name string) lexicon.StepResult {
	switch name {
	case lexicon.StepHealthCheckPre:
		res, r := c.healthCheck(ctx)
		c.pre = r
		return res
	case lexicon.StepHealthCheckPost:
		res, r := c.healthCheck(ctx)
		c.post = r
		return res
	case lexicon.StepLogAnalysis:
		return c.analyze(ctx, lexicon.AnalyzeOptions{
			Window:            lexicon.AnalysisWindow{Days: LogAnalysisDays},
			InsertSuggestions: true,
			DryRun:            c.opts.DryRun,
		})
	case lexicon.StepContentGaps:
		return c.analyze(ctx, lexicon.AnalyzeOptions{
			Window: lexicon.AnalysisWindow{Days: ContentGapsDays},
			DryRun: c.opts.DryRun,
		})
	case lexicon.StepEnrichment:
		return c.enrich(ctx)
	case lexicon.StepTagHygiene:
		return c.fixTags(ctx)
	case lexicon.StepContentAudit:
		return c.audit(ctx)
	case lexicon.StepImportAll:
		return c.importAll(ctx)
	}
	return failed(lexicon.Errorf(lexicon.EINTERNAL, "no handler for step %q", name))
}

func skipped() lexicon.StepResult {
	return lexicon.StepResult{Status: lexicon.StatusSkipped, Issues: []string{ReasonNotConfigured}}
}

func failed(err error) lexicon.StepResult {
	return lexicon.StepResult{Status: lexicon.StatusFail, Issues: []string{lexicon.ErrorMessage(err)}}
}

// degraded records a step whose backing service is unavailable as skipped
// rather than failed.
func degraded(err error) lexicon.StepResult {
	if lexicon.ErrorCode(err) == lexicon.EUNAVAILABLE {
		return lexicon.StepResult{Status: lexicon.StatusSkipped, Issues: []string{lexicon.ErrorMessage(err)}}
	}
	return failed(err)
}

func (c *cycle) healthCheck(ctx context.Context) (lexicon.StepResult, *lexicon.HealthReport) {
	if c.Health == nil {
		return skipped(), nil
	}
	r, err := c.Health.Check(ctx)
	if err != nil {
		return failed(err), nil
	}

	res := lexicon.StepResult{
		Status: lexicon.StatusPass,
		Issues: r.Issues(),
		Details: map[string]any{
			"verdict":          r.Verdict,
			"zero_result_rate": r.QueryQuality.Current.ZeroResultRate,
			"never_enriched":   r.Freshness.NeverEnriched,
		},
	}
	switch r.Verdict {
	case lexicon.VerdictCritical:
		res.Status = lexicon.StatusFail
	case lexicon.VerdictDegraded:
		res.Status = lexicon.StatusWarn
	}
	return res, r
}

func (c *cycle) analyze(ctx context.Context, opts lexicon.AnalyzeOptions) lexicon.StepResult {
	if c.Analyzer == nil {
		return skipped()
	}
	r, err := c.Analyzer.Analyze(ctx, opts)
	if err != nil {
		return failed(err)
	}

	res := lexicon.StepResult{
		Status: lexicon.StatusPass,
		Details: map[string]any{
			"report_id":     r.ID,
			"total_queries": r.Metrics.TotalQueries,
			"gaps":          len(r.Gaps),
		},
	}
	if r.Terminology.Applied != nil {
		res.Details["suggestions_inserted"] = r.Terminology.Applied.Inserted
	}
	return res
}

func (c *cycle) enrich(ctx context.Context) lexicon.StepResult {
	if c.Enricher == nil {
		return skipped()
	}
	r, err := c.Enricher.Enrich(ctx, lexicon.EnrichOptions{Limit: c.opts.EnrichLimit, DryRun: c.opts.DryRun})
	if err != nil {
		return degraded(err)
	}

	res := lexicon.StepResult{
		Status: lexicon.StatusPass,
		Details: map[string]any{
			"selected": r.Selected,
			"enriched": r.Enriched,
			"failed":   r.Failed,
		},
	}
	if r.Failed > 0 {
		res.Status = lexicon.StatusWarn
		res.Issues = []string{fmt.Sprintf("%d of %d records failed enrichment", r.Failed, r.Processed)}
	}
	return res
}

func (c *cycle) fixTags(ctx context.Context) lexicon.StepResult {
	if c.TagFixer == nil {
		return skipped()
	}
	r, err := c.TagFixer.FixTags(ctx, c.opts.DryRun)
	if err != nil {
		return failed(err)
	}
	return lexicon.StepResult{
		Status: lexicon.StatusPass,
		Details: map[string]any{
			"scanned": r.Scanned,
			"changed": r.Changed,
			"updated": r.Updated,
		},
	}
}

func (c *cycle) audit(ctx context.Context) lexicon.StepResult {
	if c.Auditor == nil {
		return skipped()
	}
	r, err := c.Auditor.Audit(ctx, lexicon.AuditOptions{DryRun: c.opts.DryRun})
	if err != nil {
		return failed(err)
	}
	return lexicon.StepResult{
		Status: lexicon.StatusPass,
		Details: map[string]any{
			"report_id": r.ID,
			"total":     r.Metrics.Total,
			"flagged":   len(r.Flagged),
		},
	}
}

func (c *cycle) importAll(ctx context.Context) lexicon.StepResult {
	if c.Importer == nil {
		return skipped()
	}
	if err := c.Importer.Import(ctx, c.opts.DryRun); err != nil {
		return failed(err)
	}
	return lexicon.StepResult{Status: lexicon.StatusPass}
}

// delta compares the two health snapshots. It is nil unless both exist.
func (c *cycle) delta() *lexicon.HealthDelta {
	if c.pre == nil || c.post == nil {
		return nil
	}
	rate := lexicon.Round(c.post.QueryQuality.Current.ZeroResultRate-c.pre.QueryQuality.Current.ZeroResultRate, 2)
	never := c.post.Freshness.NeverEnriched - c.pre.Freshness.NeverEnriched
	return &lexicon.HealthDelta{
		ZeroResultRateChange: &rate,
		NeverEnrichedChange:  &never,
	}
}
