package lexicon

import (
	"context"
	"time"
)

// Status is the outcome of a health check or maintenance step.
type Status string

// Status constants.
const (
	StatusPass    Status = "pass"
	StatusWarn    Status = "warn"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped"
)

// Verdict is the overall health of the system.
type Verdict string

// Verdict constants.
const (
	VerdictHealthy  Verdict = "healthy"
	VerdictDegraded Verdict = "degraded"
	VerdictCritical Verdict = "critical"
)

// VerdictOf returns critical if any status failed, degraded if any warned,
// and healthy otherwise.
func VerdictOf(statuses ...Status) Verdict {
	v := VerdictHealthy
	for _, s := range statuses {
		switch s {
		case StatusFail:
			return VerdictCritical
		case StatusWarn:
			v = VerdictDegraded
		}
	}
	return v
}

// Health check names.
const (
	CheckQueryQuality     = "query_quality"
	CheckContentFreshness = "content_freshness"
	CheckPipelineStatus   = "pipeline_status"
	CheckTerminology      = "terminology"
	CheckAIAnomaly        = "ai_anomaly"
)

// HealthCheck is the status of a single check.
type HealthCheck struct {
	Name   string   `json:"name"`
	Status Status   `json:"status"`
	Issues []string `json:"issues"`
}

// Alert is a query-quality threshold breach.
type Alert struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// QualityWindow is search quality over the most recent day.
type QualityWindow struct {
	TotalQueries       int     `json:"totalQueries"`
	ZeroResult         int     `json:"zeroResult"`
	ZeroResultRate     float64 `json:"zeroResultRate"`
	AvgRecommendations float64 `json:"avgRecommendations"`
	UniqueQueries      int     `json:"uniqueQueries"`
}

// BaselineWindow is search quality over the rolling baseline.
type BaselineWindow struct {
	AvgDailyQueries    float64 `json:"avgDailyQueries"`
	ZeroResultRate     float64 `json:"zeroResultRate"`
	AvgRecommendations float64 `json:"avgRecommendations"`
}

// QueryQuality compares the last day against the baseline.
type QueryQuality struct {
	Current  QualityWindow  `json:"current"`
	Baseline BaselineWindow `json:"baseline"`
	Alerts   []Alert        `json:"alerts"`
}

// ContentFreshness counts inventory items needing attention.
type ContentFreshness struct {
	Total            int `json:"total"`
	StaleEnriched    int `json:"staleEnriched"`
	NeverEnriched    int `json:"neverEnriched"`
	ExtractionErrors int `json:"extractionErrors"`
	MissingKeywords  int `json:"missingKeywords"`
}

// PipelineStatus is the recency of one scheduled job.
type PipelineStatus struct {
	Type     ReportType `json:"type"`
	Name     string     `json:"name"`
	LastRun  *time.Time `json:"lastRun,omitempty"`
	AgeHours float64    `json:"ageHours"`
	Stale    bool       `json:"stale"`
}

// Anomaly is a model-detected concern.
type Anomaly struct {
	Severity       string `json:"severity"`
	Area           string `json:"area"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// AnomalyReport is the model's reading of the combined metrics.
type AnomalyReport struct {
	AIStatus
	Anomalies     []Anomaly `json:"anomalies,omitempty"`
	OverallHealth Verdict   `json:"overallHealth,omitempty"`
	Summary       string    `json:"summary,omitempty"`
}

// HealthReport is the output of one health run.
type HealthReport struct {
	GeneratedAt  time.Time        `json:"generatedAt"`
	BaselineDays int              `json:"baselineDays"`
	Verdict      Verdict          `json:"verdict"`
	Checks       []HealthCheck    `json:"checks"`
	QueryQuality QueryQuality     `json:"queryQuality"`
	Freshness    ContentFreshness `json:"freshness"`
	Pipelines    []PipelineStatus `json:"pipelines"`
	Terminology  MappingStats     `json:"terminology"`
	AI           AnomalyReport    `json:"ai"`
}

// Issues returns every issue across all checks.
func (r *HealthReport) Issues() []string {
	var issues []string
	for _, c := range r.Checks {
		issues = append(issues, c.Issues...)
	}
	return issues
}

// HealthChecker computes a health report.
type HealthChecker interface {
	Check(ctx context.Context) (*HealthReport, error)
}
