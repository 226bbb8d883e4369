package mock

import (
	"context"
	"time"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.ReportService = (*ReportService)(nil)

// ReportService is a mock implementation of lexicon.ReportService.
type ReportService struct {
	CreateReportFn func(ctx context.Context, r *lexicon.Report) error
	FindReportsFn  func(ctx context.Context, filter lexicon.ReportFilter) ([]*lexicon.Report, error)
	LastRunsFn     func(ctx context.Context) (map[lexicon.ReportType]time.Time, error)
}

func (s *ReportService) CreateReport(ctx context.Context, r *lexicon.Report) error {
	return s.CreateReportFn(ctx, r)
}

func (s *ReportService) FindReports(ctx context.Context, filter lexicon.ReportFilter) ([]*lexicon.Report, error) {
	return s.FindReportsFn(ctx, filter)
}

func (s *ReportService) LastRuns(ctx context.Context) (map[lexicon.ReportType]time.Time, error) {
	return s.LastRunsFn(ctx)
}
