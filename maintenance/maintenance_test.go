package maintenance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/enrich"
	"github.com/fwojciec/lexicon/maintenance"
	"github.com/fwojciec/lexicon/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthReport(v lexicon.Verdict, zeroRate float64, never int) *lexicon.HealthReport {
	r := &lexicon.HealthReport{Verdict: v}
	r.QueryQuality.Current.ZeroResultRate = zeroRate
	r.Freshness.NeverEnriched = never
	if v != lexicon.VerdictHealthy {
		r.Checks = []lexicon.HealthCheck{{Name: lexicon.CheckQueryQuality, Status: lexicon.StatusFail, Issues: []string{"zero-result spike"}}}
	}
	return r
}

// recorder builds an orchestrator whose collaborators append their step
// name to calls.
type recorder struct {
	calls    []string
	analyses []lexicon.AnalyzeOptions
	health   []*lexicon.HealthReport
}

func (rec *recorder) orchestrator() *maintenance.Orchestrator {
	return &maintenance.Orchestrator{
		Health: &mock.HealthChecker{
			CheckFn: func(context.Context) (*lexicon.HealthReport, error) {
				rec.calls = append(rec.calls, "health")
				if len(rec.health) == 0 {
					return healthReport(lexicon.VerdictHealthy, 0, 0), nil
				}
				r := rec.health[0]
				rec.health = rec.health[1:]
				return r, nil
			},
		},
		Analyzer: &mock.ReportAnalyzer{
			AnalyzeFn: func(_ context.Context, opts lexicon.AnalyzeOptions) (*lexicon.AnalysisReport, error) {
				rec.calls = append(rec.calls, "analyze")
				rec.analyses = append(rec.analyses, opts)
				return &lexicon.AnalysisReport{ID: "r1"}, nil
			},
		},
		Enricher: &mock.Enricher{
			EnrichFn: func(context.Context, lexicon.EnrichOptions) (*lexicon.EnrichResult, error) {
				rec.calls = append(rec.calls, "enrich")
				return &lexicon.EnrichResult{}, nil
			},
		},
		TagFixer: &mock.TagFixer{
			FixTagsFn: func(context.Context, bool) (*lexicon.HygieneResult, error) {
				rec.calls = append(rec.calls, "tags")
				return &lexicon.HygieneResult{}, nil
			},
		},
		Auditor: &mock.Auditor{
			AuditFn: func(context.Context, lexicon.AuditOptions) (*lexicon.AuditReport, error) {
				rec.calls = append(rec.calls, "audit")
				return &lexicon.AuditReport{}, nil
			},
		},
	}
}

func TestSteps(t *testing.T) {
	t.Parallel()

	t.Run("each mode extends the previous one", func(t *testing.T) {
		t.Parallel()

		daily, err := maintenance.Steps(lexicon.ModeDaily)
		require.NoError(t, err)
		assert.Equal(t, []string{"health_check_pre", "log_analysis", "enrichment", "tag_hygiene", "health_check_post"}, daily)

		weekly, err := maintenance.Steps(lexicon.ModeWeekly)
		require.NoError(t, err)
		assert.Equal(t, []string{"health_check_pre", "log_analysis", "enrichment", "tag_hygiene", "content_audit", "content_gaps", "health_check_post"}, weekly)

		full, err := maintenance.Steps(lexicon.ModeFull)
		require.NoError(t, err)
		assert.Equal(t, []string{"health_check_pre", "log_analysis", "enrichment", "tag_hygiene", "content_audit", "content_gaps", "import_all", "health_check_post"}, full)
	})

	t.Run("unknown mode", func(t *testing.T) {
		t.Parallel()

		_, err := maintenance.Steps("hourly")
		assert.Equal(t, lexicon.EINVALID, lexicon.ErrorCode(err))
	})
}

func TestOrchestrator_Run(t *testing.T) {
	t.Parallel()

	t.Run("skip list removes steps and keeps order", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		run, err := rec.orchestrator().Run(context.Background(), lexicon.RunOptions{
			Mode: lexicon.ModeDaily,
			Skip: []string{"health_check_pre", "tag_hygiene"},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"log_analysis", "enrichment", "health_check_post"}, run.StepNames())
		assert.Equal(t, []string{"analyze", "enrich", "health"}, rec.calls)
		assert.Nil(t, run.Step("health_check_pre"))
		assert.Nil(t, run.Step("tag_hygiene"))
		assert.Nil(t, run.Delta)
		assert.Equal(t, lexicon.RunCompleted, run.Verdict)
	})

	t.Run("critical pre check halts with stop on error", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{health: []*lexicon.HealthReport{healthReport(lexicon.VerdictCritical, 40, 3)}}
		run, err := rec.orchestrator().Run(context.Background(), lexicon.RunOptions{
			Mode:        lexicon.ModeDaily,
			StopOnError: true,
		})
		require.NoError(t, err)

		assert.Equal(t, "health_check_pre", run.StoppedAt)
		assert.Equal(t, []string{"health_check_pre"}, run.StepNames())
		assert.Equal(t, []string{"health"}, rec.calls)
		assert.Equal(t, lexicon.StatusFail, run.Step("health_check_pre").Status)
		assert.Equal(t, []string{"zero-result spike"}, run.Step("health_check_pre").Issues)
		assert.Equal(t, lexicon.RunHalted, run.Verdict)
	})

	t.Run("critical pre check continues without stop on error", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{health: []*lexicon.HealthReport{
			healthReport(lexicon.VerdictCritical, 40, 3),
			healthReport(lexicon.VerdictDegraded, 25.5, 1),
		}}
		run, err := rec.orchestrator().Run(context.Background(), lexicon.RunOptions{Mode: lexicon.ModeDaily})
		require.NoError(t, err)

		assert.Empty(t, run.StoppedAt)
		assert.Len(t, run.Steps, 5)
		assert.Equal(t, lexicon.RunCompletedWithErrors, run.Verdict)
		assert.Equal(t, lexicon.StatusWarn, run.Step("health_check_post").Status)

		require.NotNil(t, run.Delta)
		assert.InDelta(t, -14.5, *run.Delta.ZeroResultRateChange, 0.001)
		assert.Equal(t, -2, *run.Delta.NeverEnrichedChange)
	})

	t.Run("failing step halts with stop on error", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		o := rec.orchestrator()
		o.Enricher = &mock.Enricher{
			EnrichFn: func(context.Context, lexicon.EnrichOptions) (*lexicon.EnrichResult, error) {
				return nil, errors.New("database is locked")
			},
		}

		run, err := o.Run(context.Background(), lexicon.RunOptions{Mode: lexicon.ModeDaily, StopOnError: true})
		require.NoError(t, err)

		assert.Equal(t, "enrichment", run.StoppedAt)
		assert.Equal(t, []string{"health_check_pre", "log_analysis", "enrichment"}, run.StepNames())
		assert.Equal(t, []string{"database is locked"}, run.Step("enrichment").Issues)
		assert.Nil(t, run.Delta)
	})

	t.Run("failing step without stop on error runs the rest", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		o := rec.orchestrator()
		o.TagFixer = &mock.TagFixer{
			FixTagsFn: func(context.Context, bool) (*lexicon.HygieneResult, error) {
				return nil, errors.New("boom")
			},
		}

		run, err := o.Run(context.Background(), lexicon.RunOptions{Mode: lexicon.ModeDaily})
		require.NoError(t, err)

		assert.Len(t, run.Steps, 5)
		assert.Equal(t, lexicon.StatusFail, run.Step("tag_hygiene").Status)
		assert.Equal(t, lexicon.RunCompletedWithErrors, run.Verdict)
		require.NotNil(t, run.Delta)
		assert.Zero(t, *run.Delta.ZeroResultRateChange)
	})

	t.Run("weekly analyzer windows", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		run, err := rec.orchestrator().Run(context.Background(), lexicon.RunOptions{Mode: lexicon.ModeWeekly, DryRun: true})
		require.NoError(t, err)

		assert.True(t, run.DryRun)
		require.Len(t, rec.analyses, 2)
		assert.Equal(t, lexicon.AnalyzeOptions{
			Window:            lexicon.AnalysisWindow{Days: 1},
			InsertSuggestions: true,
			DryRun:            true,
		}, rec.analyses[0])
		assert.Equal(t, lexicon.AnalyzeOptions{
			Window: lexicon.AnalysisWindow{Days: 7},
			DryRun: true,
		}, rec.analyses[1])
		assert.Equal(t, "r1", run.Step("content_gaps").Details["report_id"])
	})

	t.Run("nil collaborators are skipped", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		run, err := rec.orchestrator().Run(context.Background(), lexicon.RunOptions{Mode: lexicon.ModeFull})
		require.NoError(t, err)

		s := run.Step("import_all")
		require.NotNil(t, s)
		assert.Equal(t, lexicon.StatusSkipped, s.Status)
		assert.Equal(t, []string{maintenance.ReasonNotConfigured}, s.Issues)
		assert.Equal(t, lexicon.RunCompleted, run.Verdict)
	})

	t.Run("enrichment failures warn", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		o := rec.orchestrator()
		var got lexicon.EnrichOptions
		o.Enricher = &mock.Enricher{
			EnrichFn: func(_ context.Context, opts lexicon.EnrichOptions) (*lexicon.EnrichResult, error) {
				got = opts
				return &lexicon.EnrichResult{Selected: 5, Processed: 5, Enriched: 3, Failed: 2}, nil
			},
		}

		run, err := o.Run(context.Background(), lexicon.RunOptions{Mode: lexicon.ModeDaily, EnrichLimit: 5})
		require.NoError(t, err)

		assert.Equal(t, 5, got.Limit)
		s := run.Step("enrichment")
		assert.Equal(t, lexicon.StatusWarn, s.Status)
		assert.Equal(t, []string{"2 of 5 records failed enrichment"}, s.Issues)
		assert.Equal(t, lexicon.RunCompleted, run.Verdict)
	})

	t.Run("enricher without a model is skipped and the run continues", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		o := rec.orchestrator()
		o.Enricher = &enrich.Enricher{Content: &mock.ContentService{}}

		run, err := o.Run(context.Background(), lexicon.RunOptions{Mode: lexicon.ModeDaily, StopOnError: true})
		require.NoError(t, err)

		s := run.Step("enrichment")
		require.NotNil(t, s)
		assert.Equal(t, lexicon.StatusSkipped, s.Status)
		assert.Equal(t, []string{lexicon.ReasonNoCompleter}, s.Issues)
		assert.Empty(t, run.StoppedAt)
		assert.Equal(t, lexicon.RunCompleted, run.Verdict)
		assert.Contains(t, rec.calls, "tags")
	})

	t.Run("other enricher errors fail the step", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		o := rec.orchestrator()
		o.Enricher = &mock.Enricher{
			EnrichFn: func(context.Context, lexicon.EnrichOptions) (*lexicon.EnrichResult, error) {
				return nil, errors.New("disk full")
			},
		}

		run, err := o.Run(context.Background(), lexicon.RunOptions{Mode: lexicon.ModeDaily, StopOnError: true})
		require.NoError(t, err)

		assert.Equal(t, lexicon.StatusFail, run.Step("enrichment").Status)
		assert.Equal(t, "enrichment", run.StoppedAt)
		assert.Equal(t, lexicon.RunHalted, run.Verdict)
	})

	t.Run("observer sees every step", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		o := rec.orchestrator()
		var seen []string
		o.Observer = &mock.StepObserver{
			ObserveStepFn: func(_ context.Context, step lexicon.StepResult) {
				seen = append(seen, step.Name)
			},
		}

		run, err := o.Run(context.Background(), lexicon.RunOptions{Mode: lexicon.ModeDaily, Skip: []string{"no_such_step"}})
		require.NoError(t, err)

		assert.Equal(t, run.StepNames(), seen)
	})

	t.Run("unknown mode", func(t *testing.T) {
		t.Parallel()

		_, err := (&maintenance.Orchestrator{}).Run(context.Background(), lexicon.RunOptions{Mode: "hourly"})
		assert.Equal(t, lexicon.EINVALID, lexicon.ErrorCode(err))
	})
}
