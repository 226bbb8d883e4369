package mock

import (
	"context"

	"github.com/fwojciec/lexicon"
)

var (
	_ lexicon.Suggester      = (*Suggester)(nil)
	_ lexicon.HealthChecker  = (*HealthChecker)(nil)
	_ lexicon.ReportAnalyzer = (*ReportAnalyzer)(nil)
	_ lexicon.Enricher       = (*Enricher)(nil)
	_ lexicon.TagFixer       = (*TagFixer)(nil)
	_ lexicon.Auditor        = (*Auditor)(nil)
	_ lexicon.Importer       = (*Importer)(nil)
	_ lexicon.StepObserver   = (*StepObserver)(nil)
	_ lexicon.Maintainer     = (*Maintainer)(nil)
)

// Suggester is a mock implementation of lexicon.Suggester.
type Suggester struct {
	ApplyFn func(ctx context.Context, candidates []lexicon.Mapping, dryRun bool) (*lexicon.SuggestionResult, error)
}

func (s *Suggester) Apply(ctx context.Context, candidates []lexicon.Mapping, dryRun bool) (*lexicon.SuggestionResult, error) {
	return s.ApplyFn(ctx, candidates, dryRun)
}

// HealthChecker is a mock implementation of lexicon.HealthChecker.
type HealthChecker struct {
	CheckFn func(ctx context.Context) (*lexicon.HealthReport, error)
}

func (h *HealthChecker) Check(ctx context.Context) (*lexicon.HealthReport, error) {
	return h.CheckFn(ctx)
}

// ReportAnalyzer is a mock implementation of lexicon.ReportAnalyzer.
type ReportAnalyzer struct {
	AnalyzeFn func(ctx context.Context, opts lexicon.AnalyzeOptions) (*lexicon.AnalysisReport, error)
}

func (a *ReportAnalyzer) Analyze(ctx context.Context, opts lexicon.AnalyzeOptions) (*lexicon.AnalysisReport, error) {
	return a.AnalyzeFn(ctx, opts)
}

// Enricher is a mock implementation of lexicon.Enricher.
type Enricher struct {
	EnrichFn func(ctx context.Context, opts lexicon.EnrichOptions) (*lexicon.EnrichResult, error)
}

func (e *Enricher) Enrich(ctx context.Context, opts lexicon.EnrichOptions) (*lexicon.EnrichResult, error) {
	return e.EnrichFn(ctx, opts)
}

// TagFixer is a mock implementation of lexicon.TagFixer.
type TagFixer struct {
	FixTagsFn func(ctx context.Context, dryRun bool) (*lexicon.HygieneResult, error)
}

func (f *TagFixer) FixTags(ctx context.Context, dryRun bool) (*lexicon.HygieneResult, error) {
	return f.FixTagsFn(ctx, dryRun)
}

// Auditor is a mock implementation of lexicon.Auditor.
type Auditor struct {
	AuditFn func(ctx context.Context, opts lexicon.AuditOptions) (*lexicon.AuditReport, error)
}

func (a *Auditor) Audit(ctx context.Context, opts lexicon.AuditOptions) (*lexicon.AuditReport, error) {
	return a.AuditFn(ctx, opts)
}

// Importer is a mock implementation of lexicon.Importer.
type Importer struct {
	ImportFn func(ctx context.Context, dryRun bool) error
}

func (i *Importer) Import(ctx context.Context, dryRun bool) error {
	return i.ImportFn(ctx, dryRun)
}

// StepObserver is a mock implementation of lexicon.StepObserver.
type StepObserver struct {
	ObserveStepFn func(ctx context.Context, step lexicon.StepResult)
}

func (o *StepObserver) ObserveStep(ctx context.Context, step lexicon.StepResult) {
	o.ObserveStepFn(ctx, step)
}

// Maintainer is a mock implementation of lexicon.Maintainer.
type Maintainer struct {
	RunFn func(ctx context.Context, opts lexicon.RunOptions) (*lexicon.MaintenanceRun, error)
}

func (m *Maintainer) Run(ctx context.Context, opts lexicon.RunOptions) (*lexicon.MaintenanceRun, error) {
	return m.RunFn(ctx, opts)
}
