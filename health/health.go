// Package health computes a point-in-time health report for the search
// pipeline from the query log, the content inventory, the report history
// and the terminology store.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.HealthChecker = (*Monitor)(nil)

// RecentMappingWindow is how far back terminology growth is counted.
const RecentMappingWindow = 7 * 24 * time.Hour

// Monitor runs the health checks. It holds no state between runs.
type Monitor struct {
	Logs      lexicon.QueryLogService
	Content   lexicon.ContentService
	Reports   lexicon.ReportService
	Mappings  lexicon.MappingService
	Completer lexicon.Completer

	// Thresholds defaults to lexicon.DefaultConfig().Health when zero.
	Thresholds lexicon.HealthThresholds

	// SkipAI disables anomaly detection.
	SkipAI bool

	Logger *slog.Logger
	Clock  func() time.Time
}

func (m *Monitor) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}

func (m *Monitor) now() time.Time {
	if m.Clock == nil {
		return time.Now().UTC()
	}
	return m.Clock().UTC()
}

func (m *Monitor) thresholds() lexicon.HealthThresholds {
	if m.Thresholds.BaselineDays == 0 {
		return lexicon.DefaultConfig().Health
	}
	return m.Thresholds
}

// Check runs every check and derives the overall verdict. Store failures
// are returned; model failures only downgrade the anomaly check.
func (m *Monitor) Check(ctx context.Context) (*lexicon.HealthReport, error) {
	now := m.now()
	th := m.thresholds()
	r := &lexicon.HealthReport{
		GeneratedAt:  now,
		BaselineDays: th.BaselineDays,
	}

	for _, check := range []func(context.Context, *lexicon.HealthReport, time.Time, lexicon.HealthThresholds) (lexicon.HealthCheck, error){
		m.queryQuality,
		m.contentFreshness,
		m.pipelineStatus,
		m.terminology,
	} {
		c, err := check(ctx, r, now, th)
		if err != nil {
			return nil, err
		}
		r.Checks = append(r.Checks, c)
	}
	r.Checks = append(r.Checks, m.anomalies(ctx, r))

	statuses := make([]lexicon.Status, 0, len(r.Checks))
	for _, c := range r.Checks {
		statuses = append(statuses, c.Status)
	}
	r.Verdict = lexicon.VerdictOf(statuses...)
	return r, nil
}

// queryQuality compares the last 24 hours with the baseline window that
// precedes them.
func (m *Monitor) queryQuality(ctx context.Context, r *lexicon.HealthReport, now time.Time, th lexicon.HealthThresholds) (lexicon.HealthCheck, error) {
	check := lexicon.HealthCheck{Name: lexicon.CheckQueryQuality, Status: lexicon.StatusPass, Issues: []string{}}

	since := now.Add(-time.Duration(th.BaselineDays) * 24 * time.Hour)
	entries, err := m.Logs.FindQueryLogs(ctx, lexicon.QueryLogFilter{Since: &since})
	if err != nil {
		return check, fmt.Errorf("load query logs: %w", err)
	}

	dayStart := now.Add(-24 * time.Hour)
	var current, baseline []*lexicon.QueryLogEntry
	for _, e := range entries {
		if e.CreatedAt.After(dayStart) {
			current = append(current, e)
		} else {
			baseline = append(baseline, e)
		}
	}

	unique := make(map[string]struct{}, len(current))
	for _, e := range current {
		unique[e.Query] = struct{}{}
	}
	q := lexicon.QueryQuality{
		Current: lexicon.QualityWindow{
			TotalQueries:       len(current),
			ZeroResult:         zeroResults(current),
			ZeroResultRate:     zeroRate(current),
			AvgRecommendations: lexicon.Round(avgRecorded(current), 1),
			UniqueQueries:      len(unique),
		},
		Baseline: lexicon.BaselineWindow{
			AvgDailyQueries:    lexicon.Round(float64(len(baseline))/float64(max(th.BaselineDays, 1)), 1),
			ZeroResultRate:     zeroRate(baseline),
			AvgRecommendations: lexicon.Round(avgRecorded(baseline), 1),
		},
		Alerts: []lexicon.Alert{},
	}

	limit := th.ZeroRateThreshold * 100
	if q.Current.ZeroResultRate > limit {
		q.Alerts = append(q.Alerts, lexicon.Alert{
			Severity: "high",
			Message:  fmt.Sprintf("Zero-result rate %.1f%% exceeds threshold %.1f%%", q.Current.ZeroResultRate, limit),
		})
	}
	if q.Baseline.ZeroResultRate > 0 && q.Current.ZeroResultRate > q.Baseline.ZeroResultRate*th.BaselineMultiplier {
		q.Alerts = append(q.Alerts, lexicon.Alert{
			Severity: "medium",
			Message:  fmt.Sprintf("Zero-result rate %.1f%% is %.1fx above baseline %.1f%%", q.Current.ZeroResultRate, th.BaselineMultiplier, q.Baseline.ZeroResultRate),
		})
	}

	for _, a := range q.Alerts {
		check.Issues = append(check.Issues, a.Message)
		if a.Severity == "high" {
			check.Status = lexicon.StatusFail
		} else if check.Status != lexicon.StatusFail {
			check.Status = lexicon.StatusWarn
		}
	}
	r.QueryQuality = q
	return check, nil
}

func zeroResults(entries []*lexicon.QueryLogEntry) int {
	n := 0
	for _, e := range entries {
		if e.ZeroResult() {
			n++
		}
	}
	return n
}

// zeroRate is the zero-result percentage rounded to one decimal.
func zeroRate(entries []*lexicon.QueryLogEntry) float64 {
	return lexicon.Round(float64(zeroResults(entries))/float64(max(len(entries), 1))*100, 1)
}

// avgRecorded averages the recommendation counts that were recorded.
func avgRecorded(entries []*lexicon.QueryLogEntry) float64 {
	var sum, n int
	for _, e := range entries {
		if e.RecommendationsCount == nil {
			continue
		}
		sum += *e.RecommendationsCount
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func (m *Monitor) contentFreshness(ctx context.Context, r *lexicon.HealthReport, now time.Time, th lexicon.HealthThresholds) (lexicon.HealthCheck, error) {
	check := lexicon.HealthCheck{Name: lexicon.CheckContentFreshness, Status: lexicon.StatusPass, Issues: []string{}}

	items, err := m.Content.FindContent(ctx, lexicon.ContentFilter{})
	if err != nil {
		return check, fmt.Errorf("load content: %w", err)
	}

	staleBefore := now.Add(-th.StaleAfter)
	f := lexicon.ContentFreshness{Total: len(items)}
	for _, c := range items {
		switch {
		case c.EnrichedAt == nil:
			f.NeverEnriched++
		case c.EnrichedAt.Before(staleBefore):
			f.StaleEnriched++
		}
		if c.ExtractionError != "" {
			f.ExtractionErrors++
		}
		if len(c.Keywords) == 0 {
			f.MissingKeywords++
		}
	}

	if f.ExtractionErrors > th.MaxExtractionErrors {
		check.Issues = append(check.Issues, fmt.Sprintf("%d records have extraction errors", f.ExtractionErrors))
	}
	if float64(f.MissingKeywords) > float64(f.Total)*th.MaxMissingKeywordsRatio {
		pct := math.Round(float64(f.MissingKeywords) / float64(max(f.Total, 1)) * 100)
		check.Issues = append(check.Issues, fmt.Sprintf("%d/%d records missing keywords (%.0f%%)", f.MissingKeywords, f.Total, pct))
	}
	if len(check.Issues) > 0 {
		check.Status = lexicon.StatusFail
	}
	r.Freshness = f
	return check, nil
}

func (m *Monitor) pipelineStatus(ctx context.Context, r *lexicon.HealthReport, now time.Time, th lexicon.HealthThresholds) (lexicon.HealthCheck, error) {
	check := lexicon.HealthCheck{Name: lexicon.CheckPipelineStatus, Status: lexicon.StatusPass, Issues: []string{}}

	runs, err := m.Reports.LastRuns(ctx)
	if err != nil {
		return check, fmt.Errorf("load pipeline runs: %w", err)
	}

	r.Pipelines = make([]lexicon.PipelineStatus, 0, len(th.Pipelines))
	for _, p := range th.Pipelines {
		status := lexicon.PipelineStatus{Type: p.Type, Name: p.Name, Stale: true}
		maxHours := p.MaxAge.Hours()
		if last, ok := runs[p.Type]; ok {
			age := now.Sub(last).Hours()
			status.LastRun = &last
			status.AgeHours = lexicon.Round(age, 1)
			status.Stale = age > maxHours
			if status.Stale {
				check.Issues = append(check.Issues, fmt.Sprintf("%s last ran %.0fh ago (threshold: %.0fh)", p.Name, age, maxHours))
			}
		} else {
			check.Issues = append(check.Issues, fmt.Sprintf("%s has never run", p.Name))
		}
		r.Pipelines = append(r.Pipelines, status)
	}

	if len(check.Issues) > 0 {
		check.Status = lexicon.StatusWarn
	}
	return check, nil
}

func (m *Monitor) terminology(ctx context.Context, r *lexicon.HealthReport, now time.Time, _ lexicon.HealthThresholds) (lexicon.HealthCheck, error) {
	check := lexicon.HealthCheck{Name: lexicon.CheckTerminology, Status: lexicon.StatusPass, Issues: []string{}}

	stats, err := m.Mappings.MappingStats(ctx, now.Add(-RecentMappingWindow))
	if err != nil {
		return check, fmt.Errorf("load mapping stats: %w", err)
	}
	if stats.Total == 0 {
		check.Issues = append(check.Issues, "Terminology map is empty")
		check.Status = lexicon.StatusWarn
	}
	r.Terminology = *stats
	return check, nil
}

const monitorPrompt = "You are a system health monitor for a marketing content search portal. Analyze metrics and identify anomalies. Respond with valid JSON only."

func (m *Monitor) anomalies(ctx context.Context, r *lexicon.HealthReport) lexicon.HealthCheck {
	check := lexicon.HealthCheck{Name: lexicon.CheckAIAnomaly, Status: lexicon.StatusSkipped, Issues: []string{}}

	switch {
	case m.SkipAI:
		r.AI = lexicon.AnomalyReport{AIStatus: lexicon.AISkipped("disabled")}
		return check
	case m.Completer == nil:
		r.AI = lexicon.AnomalyReport{AIStatus: lexicon.AISkipped(lexicon.ReasonNoCompleter)}
		return check
	}

	metrics, err := json.MarshalIndent(struct {
		QueryQuality lexicon.QueryQuality     `json:"query_quality"`
		Freshness    lexicon.ContentFreshness `json:"content_freshness"`
		Pipelines    []lexicon.PipelineStatus `json:"pipeline_status"`
		Terminology  lexicon.MappingStats     `json:"terminology"`
	}{r.QueryQuality, r.Freshness, r.Pipelines, r.Terminology}, "", "  ")
	if err != nil {
		return m.anomalyFailed(r, check, err)
	}

	prompt := fmt.Sprintf(`Analyze these health metrics and identify any anomalies or concerns:

%s

Respond with JSON:
{
  "anomalies": [{"severity": "high|medium|low", "area": "area name", "description": "what's wrong", "recommendation": "what to do"}],
  "overall_health": "healthy|degraded|critical",
  "summary": "1-2 sentence overall assessment"
}

Focus on whether search quality is degrading, whether enrichment keeps up,
whether content freshness is acceptable, and any emerging patterns.`, metrics)

	reply, err := m.Completer.Complete(ctx, monitorPrompt, prompt)
	if err != nil {
		return m.anomalyFailed(r, check, err)
	}

	var parsed struct {
		Anomalies     []lexicon.Anomaly `json:"anomalies"`
		OverallHealth lexicon.Verdict   `json:"overall_health"`
		Summary       string            `json:"summary"`
	}
	if err := lexicon.ExtractJSON(reply, &parsed); err != nil {
		return m.anomalyFailed(r, check, err)
	}

	r.AI = lexicon.AnomalyReport{
		AIStatus:      lexicon.AIOK(),
		Anomalies:     parsed.Anomalies,
		OverallHealth: parsed.OverallHealth,
		Summary:       parsed.Summary,
	}
	check.Status = lexicon.StatusPass
	return check
}

func (m *Monitor) anomalyFailed(r *lexicon.HealthReport, check lexicon.HealthCheck, err error) lexicon.HealthCheck {
	m.logger().Warn("anomaly detection failed", "error", err)
	r.AI = lexicon.AnomalyReport{AIStatus: lexicon.AIFailed(err)}
	check.Status = lexicon.StatusWarn
	check.Issues = append(check.Issues, "AI analysis failed: "+lexicon.ErrorMessage(err))
	return check
}
