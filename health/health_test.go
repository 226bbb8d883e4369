package health_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/health"
	"github.com/fwojciec/lexicon/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// logs returns n entries created at the given time, the first zero of
// which have no recommendations.
func logs(n, zero int, at time.Time) []*lexicon.QueryLogEntry {
	out := make([]*lexicon.QueryLogEntry, 0, n)
	for i := range n {
		e := &lexicon.QueryLogEntry{Query: "q", CreatedAt: at, RecommendationsCount: ptr(4)}
		if i < zero {
			e.RecommendationsCount = ptr(0)
		}
		out = append(out, e)
	}
	return out
}

func enriched(n int) []*lexicon.ContentItem {
	at := now.Add(-24 * time.Hour)
	out := make([]*lexicon.ContentItem, 0, n)
	for range n {
		out = append(out, &lexicon.ContentItem{
			Title:      "Career Webinar",
			EnrichedAt: &at,
			Keywords:   []lexicon.Keyword{{Term: "career", Weight: 1}},
		})
	}
	return out
}

type fixture struct {
	logs    []*lexicon.QueryLogEntry
	content []*lexicon.ContentItem
	runs    map[lexicon.ReportType]time.Time
	total   int
}

func healthy() fixture {
	var entries []*lexicon.QueryLogEntry
	entries = append(entries, logs(10, 1, now.Add(-2*time.Hour))...)
	entries = append(entries, logs(20, 2, now.Add(-3*24*time.Hour))...)
	return fixture{
		logs:    entries,
		content: enriched(3),
		runs: map[lexicon.ReportType]time.Time{
			lexicon.ReportTypeComprehensive: now.Add(-2 * time.Hour),
			lexicon.ReportTypeAudit:         now.Add(-10 * time.Hour),
		},
		total: 5,
	}
}

func (f fixture) monitor() *health.Monitor {
	return &health.Monitor{
		Logs: &mock.QueryLogService{
			FindQueryLogsFn: func(_ context.Context, filter lexicon.QueryLogFilter) ([]*lexicon.QueryLogEntry, error) {
				return f.logs, nil
			},
		},
		Content: &mock.ContentService{
			FindContentFn: func(context.Context, lexicon.ContentFilter) ([]*lexicon.ContentItem, error) {
				return f.content, nil
			},
		},
		Reports: &mock.ReportService{
			LastRunsFn: func(context.Context) (map[lexicon.ReportType]time.Time, error) {
				return f.runs, nil
			},
		},
		Mappings: &mock.MappingService{
			MappingStatsFn: func(context.Context, time.Time) (*lexicon.MappingStats, error) {
				return &lexicon.MappingStats{Total: f.total, Active: f.total}, nil
			},
		},
		SkipAI: true,
		Clock:  func() time.Time { return now },
	}
}

func checkStatus(t *testing.T, r *lexicon.HealthReport, name string) lexicon.HealthCheck {
	t.Helper()
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %s not found", name)
	return lexicon.HealthCheck{}
}

func TestMonitor_Check(t *testing.T) {
	t.Parallel()

	t.Run("healthy system", func(t *testing.T) {
		t.Parallel()

		r, err := healthy().monitor().Check(context.Background())
		require.NoError(t, err)

		assert.Equal(t, lexicon.VerdictHealthy, r.Verdict)
		assert.Equal(t, now, r.GeneratedAt)
		assert.Equal(t, 7, r.BaselineDays)
		require.Len(t, r.Checks, 5)
		assert.Equal(t, lexicon.StatusSkipped, checkStatus(t, r, lexicon.CheckAIAnomaly).Status)
		assert.Equal(t, "disabled", r.AI.Reason)
		assert.Empty(t, r.Issues())

		assert.Equal(t, 10, r.QueryQuality.Current.TotalQueries)
		assert.Equal(t, 1, r.QueryQuality.Current.ZeroResult)
		assert.InDelta(t, 10.0, r.QueryQuality.Current.ZeroResultRate, 0.001)
		assert.Equal(t, 1, r.QueryQuality.Current.UniqueQueries)
		assert.InDelta(t, 3.6, r.QueryQuality.Current.AvgRecommendations, 0.001)
		assert.InDelta(t, 2.9, r.QueryQuality.Baseline.AvgDailyQueries, 0.001)
		assert.InDelta(t, 10.0, r.QueryQuality.Baseline.ZeroResultRate, 0.001)
	})

	t.Run("zero-result spike fails and exceeds baseline", func(t *testing.T) {
		t.Parallel()

		f := healthy()
		f.logs = append(logs(10, 3, now.Add(-time.Hour)), logs(20, 2, now.Add(-3*24*time.Hour))...)

		r, err := f.monitor().Check(context.Background())
		require.NoError(t, err)

		assert.Equal(t, lexicon.VerdictCritical, r.Verdict)
		c := checkStatus(t, r, lexicon.CheckQueryQuality)
		assert.Equal(t, lexicon.StatusFail, c.Status)
		require.Len(t, r.QueryQuality.Alerts, 2)
		assert.Equal(t, "high", r.QueryQuality.Alerts[0].Severity)
		assert.Equal(t, "medium", r.QueryQuality.Alerts[1].Severity)
		assert.Len(t, c.Issues, 2)
	})

	t.Run("baseline breach alone warns", func(t *testing.T) {
		t.Parallel()

		f := healthy()
		// 12.5% today against a 5% baseline.
		f.logs = append(logs(8, 1, now.Add(-time.Hour)), logs(20, 1, now.Add(-2*24*time.Hour))...)

		r, err := f.monitor().Check(context.Background())
		require.NoError(t, err)

		assert.Equal(t, lexicon.StatusWarn, checkStatus(t, r, lexicon.CheckQueryQuality).Status)
		assert.Equal(t, lexicon.VerdictDegraded, r.Verdict)
	})

	t.Run("no baseline zero results never warns on ratio", func(t *testing.T) {
		t.Parallel()

		f := healthy()
		f.logs = append(logs(10, 1, now.Add(-time.Hour)), logs(5, 0, now.Add(-2*24*time.Hour))...)

		r, err := f.monitor().Check(context.Background())
		require.NoError(t, err)

		assert.Equal(t, lexicon.StatusPass, checkStatus(t, r, lexicon.CheckQueryQuality).Status)
	})

	t.Run("extraction errors fail freshness", func(t *testing.T) {
		t.Parallel()

		f := healthy()
		f.content = enriched(12)
		for _, c := range f.content[:11] {
			c.ExtractionError = "timeout"
		}

		r, err := f.monitor().Check(context.Background())
		require.NoError(t, err)

		c := checkStatus(t, r, lexicon.CheckContentFreshness)
		assert.Equal(t, lexicon.StatusFail, c.Status)
		assert.Equal(t, []string{"11 records have extraction errors"}, c.Issues)
		assert.Equal(t, 11, r.Freshness.ExtractionErrors)
	})

	t.Run("missing keywords fail freshness", func(t *testing.T) {
		t.Parallel()

		f := healthy()
		f.content = enriched(10)
		old := now.Add(-40 * 24 * time.Hour)
		for _, c := range f.content[:4] {
			c.Keywords = nil
		}
		f.content[4].EnrichedAt = &old
		f.content[5].EnrichedAt = nil

		r, err := f.monitor().Check(context.Background())
		require.NoError(t, err)

		c := checkStatus(t, r, lexicon.CheckContentFreshness)
		assert.Equal(t, lexicon.StatusFail, c.Status)
		assert.Equal(t, []string{"4/10 records missing keywords (40%)"}, c.Issues)
		assert.Equal(t, lexicon.ContentFreshness{
			Total:           10,
			StaleEnriched:   1,
			NeverEnriched:   1,
			MissingKeywords: 4,
		}, r.Freshness)
	})

	t.Run("stale and missing pipelines warn", func(t *testing.T) {
		t.Parallel()

		f := healthy()
		f.runs = map[lexicon.ReportType]time.Time{
			lexicon.ReportTypeComprehensive: now.Add(-48 * time.Hour),
		}

		r, err := f.monitor().Check(context.Background())
		require.NoError(t, err)

		c := checkStatus(t, r, lexicon.CheckPipelineStatus)
		assert.Equal(t, lexicon.StatusWarn, c.Status)
		assert.Equal(t, []string{
			"Log Analysis last ran 48h ago (threshold: 36h)",
			"Content Audit has never run",
		}, c.Issues)
		require.Len(t, r.Pipelines, 2)
		assert.InDelta(t, 48.0, r.Pipelines[0].AgeHours, 0.001)
		assert.True(t, r.Pipelines[0].Stale)
		assert.Nil(t, r.Pipelines[1].LastRun)
		assert.Equal(t, lexicon.VerdictDegraded, r.Verdict)
	})

	t.Run("empty terminology warns", func(t *testing.T) {
		t.Parallel()

		f := healthy()
		f.total = 0

		r, err := f.monitor().Check(context.Background())
		require.NoError(t, err)

		c := checkStatus(t, r, lexicon.CheckTerminology)
		assert.Equal(t, lexicon.StatusWarn, c.Status)
		assert.Equal(t, []string{"Terminology map is empty"}, c.Issues)
	})

	t.Run("anomaly detection parses the reply", func(t *testing.T) {
		t.Parallel()

		m := healthy().monitor()
		m.SkipAI = false
		m.Completer = &mock.Completer{
			CompleteFn: func(_ context.Context, _ string, prompt string) (string, error) {
				assert.Contains(t, prompt, "query_quality")
				return "```json\n" + `{"anomalies": [{"severity": "low", "area": "search", "description": "flat volume", "recommendation": "watch"}], "overall_health": "healthy", "summary": "All good."}` + "\n```", nil
			},
		}

		r, err := m.Check(context.Background())
		require.NoError(t, err)

		assert.Equal(t, lexicon.StatusPass, checkStatus(t, r, lexicon.CheckAIAnomaly).Status)
		assert.Equal(t, lexicon.AIStatusOK, r.AI.Status)
		assert.Equal(t, lexicon.VerdictHealthy, r.AI.OverallHealth)
		assert.Equal(t, "All good.", r.AI.Summary)
		require.Len(t, r.AI.Anomalies, 1)
		assert.Equal(t, "search", r.AI.Anomalies[0].Area)
	})

	t.Run("anomaly failure warns", func(t *testing.T) {
		t.Parallel()

		m := healthy().monitor()
		m.SkipAI = false
		m.Completer = &mock.Completer{
			CompleteFn: func(context.Context, string, string) (string, error) {
				return "", errors.New("quota exceeded")
			},
		}

		r, err := m.Check(context.Background())
		require.NoError(t, err)

		c := checkStatus(t, r, lexicon.CheckAIAnomaly)
		assert.Equal(t, lexicon.StatusWarn, c.Status)
		assert.Equal(t, []string{"AI analysis failed: quota exceeded"}, c.Issues)
		assert.Equal(t, lexicon.AIStatusError, r.AI.Status)
		assert.Equal(t, lexicon.VerdictDegraded, r.Verdict)
	})

	t.Run("no completer skips anomaly detection", func(t *testing.T) {
		t.Parallel()

		m := healthy().monitor()
		m.SkipAI = false

		r, err := m.Check(context.Background())
		require.NoError(t, err)

		assert.Equal(t, lexicon.ReasonNoCompleter, r.AI.Reason)
		assert.Equal(t, lexicon.VerdictHealthy, r.Verdict)
	})

	t.Run("baseline window starts baseline days back", func(t *testing.T) {
		t.Parallel()

		m := healthy().monitor()
		var got lexicon.QueryLogFilter
		m.Logs = &mock.QueryLogService{
			FindQueryLogsFn: func(_ context.Context, f lexicon.QueryLogFilter) ([]*lexicon.QueryLogEntry, error) {
				got = f
				return nil, nil
			},
		}
		m.Thresholds = lexicon.DefaultConfig().Health
		m.Thresholds.BaselineDays = 3

		r, err := m.Check(context.Background())
		require.NoError(t, err)

		require.NotNil(t, got.Since)
		assert.Equal(t, now.Add(-3*24*time.Hour), *got.Since)
		assert.Equal(t, 3, r.BaselineDays)
		assert.Zero(t, r.QueryQuality.Current.ZeroResultRate)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		t.Parallel()

		m := healthy().monitor()
		m.Reports = &mock.ReportService{
			LastRunsFn: func(context.Context) (map[lexicon.ReportType]time.Time, error) {
				return nil, errors.New("locked")
			},
		}

		_, err := m.Check(context.Background())
		require.ErrorContains(t, err, "locked")
	})
}
