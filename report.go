package lexicon

import (
	"context"
	"encoding/json"
	"time"
)

// ReportType identifies the job that produced a persisted report.
type ReportType string

// ReportType constants. Pipeline recency checks key off these values.
const (
	ReportTypeComprehensive ReportType = "comprehensive"
	ReportTypeAudit         ReportType = "audit"
)

// Report is a persisted, immutable snapshot produced by a batch job.
// Payload holds the job's full JSON document.
type Report struct {
	ID                   string          `json:"id"`
	Type                 ReportType      `json:"type"`
	PeriodStart          *time.Time      `json:"periodStart,omitempty"`
	PeriodEnd            *time.Time      `json:"periodEnd,omitempty"`
	TotalQueries         int             `json:"totalQueries"`
	ZeroResultCount      int             `json:"zeroResultCount"`
	LowConfidenceCount   int             `json:"lowConfidenceCount"`
	CompetitorQueryCount int             `json:"competitorQueryCount"`
	Summary              string          `json:"summary"`
	Payload              json.RawMessage `json:"payload"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// Validate returns an error if the report contains invalid fields.
func (r *Report) Validate() error {
	if r.Type == "" {
		return Errorf(EINVALID, "report type required")
	}
	if len(r.Payload) > 0 && !json.Valid(r.Payload) {
		return Errorf(EINVALID, "report payload must be valid JSON")
	}
	return nil
}

// ReportService represents the report store.
type ReportService interface {
	// CreateReport inserts a report. Reports are never updated.
	CreateReport(ctx context.Context, r *Report) error

	// FindReports retrieves reports matching the filter, newest first.
	FindReports(ctx context.Context, filter ReportFilter) ([]*Report, error)

	// LastRuns returns the most recent creation time per report type.
	LastRuns(ctx context.Context) (map[ReportType]time.Time, error)
}

// ReportFilter represents a filter for FindReports.
type ReportFilter struct {
	Type *ReportType `json:"type"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
