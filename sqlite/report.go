package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/lexicon"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ lexicon.ReportService = (*ReportService)(nil)

// ReportService implements lexicon.ReportService using SQLite.
type ReportService struct {
	db *DB
}

// NewReportService creates a new ReportService.
func NewReportService(db *DB) *ReportService {
	return &ReportService{db: db}
}

const reportColumns = `id, report_type, period_start, period_end, total_queries, zero_result_count,
	low_confidence_count, competitor_query_count, summary, payload, created_at`

// CreateReport inserts an immutable report.
func (s *ReportService) CreateReport(ctx context.Context, r *lexicon.Report) error {
	if err := r.Validate(); err != nil {
		return err
	}

	r.ID = uuid.New().String()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.db.now()
	}
	payload := string(r.Payload)
	if payload == "" {
		payload = "{}"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, string(r.Type), formatNullTime(r.PeriodStart), formatNullTime(r.PeriodEnd),
		r.TotalQueries, r.ZeroResultCount, r.LowConfidenceCount, r.CompetitorQueryCount,
		r.Summary, payload, formatTime(r.CreatedAt))

	return err
}

// FindReports retrieves reports matching the filter, newest first.
func (s *ReportService) FindReports(ctx context.Context, filter lexicon.ReportFilter) ([]*lexicon.Report, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + reportColumns + ` FROM reports WHERE 1=1`)

	if filter.Type != nil {
		query.WriteString(" AND report_type = ?")
		args = append(args, string(*filter.Type))
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*lexicon.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}

	return reports, rows.Err()
}

// LastRuns returns the most recent report time for each report type.
func (s *ReportService) LastRuns(ctx context.Context) (map[lexicon.ReportType]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT report_type, MAX(created_at) FROM reports GROUP BY report_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make(map[lexicon.ReportType]time.Time)
	for rows.Next() {
		var typ, last string
		if err := rows.Scan(&typ, &last); err != nil {
			return nil, err
		}
		t, err := parseRFC3339(last, "created_at")
		if err != nil {
			return nil, err
		}
		runs[lexicon.ReportType(typ)] = t
	}

	return runs, rows.Err()
}

func scanReport(row scanner) (*lexicon.Report, error) {
	var r lexicon.Report
	var typ, payload, createdAt string
	var periodStart, periodEnd sql.NullString

	if err := row.Scan(&r.ID, &typ, &periodStart, &periodEnd, &r.TotalQueries, &r.ZeroResultCount,
		&r.LowConfidenceCount, &r.CompetitorQueryCount, &r.Summary, &payload, &createdAt); err != nil {
		return nil, err
	}

	r.Type = lexicon.ReportType(typ)
	r.Payload = []byte(payload)

	var err error
	if r.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if r.PeriodStart, err = parseNullRFC3339(periodStart, "period_start"); err != nil {
		return nil, err
	}
	if r.PeriodEnd, err = parseNullRFC3339(periodEnd, "period_end"); err != nil {
		return nil, err
	}

	return &r, nil
}
