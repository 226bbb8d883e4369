package mock

import (
	"context"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.QueryLogService = (*QueryLogService)(nil)

// QueryLogService is a mock implementation of lexicon.QueryLogService.
type QueryLogService struct {
	CreateQueryLogFn   func(ctx context.Context, e *lexicon.QueryLogEntry) error
	FindQueryLogByIDFn func(ctx context.Context, id string) (*lexicon.QueryLogEntry, error)
	FindQueryLogsFn    func(ctx context.Context, filter lexicon.QueryLogFilter) ([]*lexicon.QueryLogEntry, error)
}

func (s *QueryLogService) CreateQueryLog(ctx context.Context, e *lexicon.QueryLogEntry) error {
	return s.CreateQueryLogFn(ctx, e)
}

func (s *QueryLogService) FindQueryLogByID(ctx context.Context, id string) (*lexicon.QueryLogEntry, error) {
	return s.FindQueryLogByIDFn(ctx, id)
}

func (s *QueryLogService) FindQueryLogs(ctx context.Context, filter lexicon.QueryLogFilter) ([]*lexicon.QueryLogEntry, error) {
	return s.FindQueryLogsFn(ctx, filter)
}
