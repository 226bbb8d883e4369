package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/lexicon"
)

var (
	_ lexicon.Suggester      = (*LoggingSuggester)(nil)
	_ lexicon.ReportAnalyzer = (*LoggingAnalyzer)(nil)
	_ lexicon.HealthChecker  = (*LoggingHealthChecker)(nil)
	_ lexicon.Enricher       = (*LoggingEnricher)(nil)
	_ lexicon.TagFixer       = (*LoggingTagFixer)(nil)
	_ lexicon.Auditor        = (*LoggingAuditor)(nil)
)

// LoggingSuggester wraps a Suggester with logging.
type LoggingSuggester struct {
	next   lexicon.Suggester
	logger *slog.Logger
}

// NewLoggingSuggester creates a new LoggingSuggester.
func NewLoggingSuggester(next lexicon.Suggester, logger *slog.Logger) *LoggingSuggester {
	return &LoggingSuggester{next: next, logger: logger}
}

// Apply delegates and logs how many candidates were written.
func (s *LoggingSuggester) Apply(ctx context.Context, candidates []lexicon.Mapping, dryRun bool) (res *lexicon.SuggestionResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"candidates", len(candidates), "dry_run", dryRun, "duration", time.Since(begin), "err", err}
		if res != nil {
			attrs = append(attrs, "inserted", res.Inserted, "would_insert", res.WouldInsert, "conflicts", res.Conflicts)
		}
		s.logger.Info("apply suggestions", attrs...)
	}(time.Now())
	return s.next.Apply(ctx, candidates, dryRun)
}

// LoggingAnalyzer wraps a ReportAnalyzer with logging.
type LoggingAnalyzer struct {
	next   lexicon.ReportAnalyzer
	logger *slog.Logger
}

// NewLoggingAnalyzer creates a new LoggingAnalyzer.
func NewLoggingAnalyzer(next lexicon.ReportAnalyzer, logger *slog.Logger) *LoggingAnalyzer {
	return &LoggingAnalyzer{next: next, logger: logger}
}

// Analyze delegates and logs the headline metrics.
func (a *LoggingAnalyzer) Analyze(ctx context.Context, opts lexicon.AnalyzeOptions) (rep *lexicon.AnalysisReport, err error) {
	defer func(begin time.Time) {
		attrs := []any{"days", opts.Window.Days, "dry_run", opts.DryRun, "duration", time.Since(begin), "err", err}
		if rep != nil {
			attrs = append(attrs, "queries", rep.Metrics.TotalQueries, "gaps", len(rep.Gaps))
		}
		a.logger.Info("analyze", attrs...)
	}(time.Now())
	return a.next.Analyze(ctx, opts)
}

// LoggingHealthChecker wraps a HealthChecker with logging.
type LoggingHealthChecker struct {
	next   lexicon.HealthChecker
	logger *slog.Logger
}

// NewLoggingHealthChecker creates a new LoggingHealthChecker.
func NewLoggingHealthChecker(next lexicon.HealthChecker, logger *slog.Logger) *LoggingHealthChecker {
	return &LoggingHealthChecker{next: next, logger: logger}
}

// Check delegates and logs the verdict.
func (h *LoggingHealthChecker) Check(ctx context.Context) (rep *lexicon.HealthReport, err error) {
	defer func(begin time.Time) {
		attrs := []any{"duration", time.Since(begin), "err", err}
		if rep != nil {
			attrs = append(attrs, "verdict", rep.Verdict, "issues", len(rep.Issues()))
		}
		h.logger.Info("health check", attrs...)
	}(time.Now())
	return h.next.Check(ctx)
}

// LoggingEnricher wraps an Enricher with logging.
type LoggingEnricher struct {
	next   lexicon.Enricher
	logger *slog.Logger
}

// NewLoggingEnricher creates a new LoggingEnricher.
func NewLoggingEnricher(next lexicon.Enricher, logger *slog.Logger) *LoggingEnricher {
	return &LoggingEnricher{next: next, logger: logger}
}

// Enrich delegates and logs the counts.
func (e *LoggingEnricher) Enrich(ctx context.Context, opts lexicon.EnrichOptions) (res *lexicon.EnrichResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"limit", opts.Limit, "dry_run", opts.DryRun, "duration", time.Since(begin), "err", err}
		if res != nil {
			attrs = append(attrs, "selected", res.Selected, "enriched", res.Enriched, "failed", res.Failed)
		}
		e.logger.Info("enrich", attrs...)
	}(time.Now())
	return e.next.Enrich(ctx, opts)
}

// LoggingTagFixer wraps a TagFixer with logging.
type LoggingTagFixer struct {
	next   lexicon.TagFixer
	logger *slog.Logger
}

// NewLoggingTagFixer creates a new LoggingTagFixer.
func NewLoggingTagFixer(next lexicon.TagFixer, logger *slog.Logger) *LoggingTagFixer {
	return &LoggingTagFixer{next: next, logger: logger}
}

// FixTags delegates and logs the counts.
func (f *LoggingTagFixer) FixTags(ctx context.Context, dryRun bool) (res *lexicon.HygieneResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"dry_run", dryRun, "duration", time.Since(begin), "err", err}
		if res != nil {
			attrs = append(attrs, "scanned", res.Scanned, "changed", res.Changed)
		}
		f.logger.Info("fix tags", attrs...)
	}(time.Now())
	return f.next.FixTags(ctx, dryRun)
}

// LoggingAuditor wraps an Auditor with logging.
type LoggingAuditor struct {
	next   lexicon.Auditor
	logger *slog.Logger
}

// NewLoggingAuditor creates a new LoggingAuditor.
func NewLoggingAuditor(next lexicon.Auditor, logger *slog.Logger) *LoggingAuditor {
	return &LoggingAuditor{next: next, logger: logger}
}

// Audit delegates and logs the inventory size and flag count.
func (a *LoggingAuditor) Audit(ctx context.Context, opts lexicon.AuditOptions) (rep *lexicon.AuditReport, err error) {
	defer func(begin time.Time) {
		attrs := []any{"dry_run", opts.DryRun, "duration", time.Since(begin), "err", err}
		if rep != nil {
			attrs = append(attrs, "total", rep.Metrics.Total, "flagged", len(rep.Flagged))
		}
		a.logger.Info("audit", attrs...)
	}(time.Now())
	return a.next.Audit(ctx, opts)
}
