package mock

import (
	"context"
	"time"

	"github.com/fwojciec/lexicon"
)

var (
	_ lexicon.MappingService = (*MappingService)(nil)
	_ lexicon.Promoter       = (*MappingService)(nil)
)

// MappingService is a mock implementation of lexicon.MappingService.
type MappingService struct {
	UpsertSeedFn        func(ctx context.Context, m *lexicon.Mapping) (bool, error)
	InsertSuggestedFn   func(ctx context.Context, m *lexicon.Mapping) (bool, error)
	FindMappingByIDFn   func(ctx context.Context, id string) (*lexicon.Mapping, error)
	FindMappingsFn      func(ctx context.Context, filter lexicon.MappingFilter) ([]*lexicon.Mapping, error)
	RecordUsageFn       func(ctx context.Context, category lexicon.Category, userTerm string) error
	DeactivateMappingFn func(ctx context.Context, id string) error
	MappingStatsFn      func(ctx context.Context, since time.Time) (*lexicon.MappingStats, error)
	PromoteMappingFn    func(ctx context.Context, id string) (*lexicon.Mapping, error)
}

func (s *MappingService) UpsertSeed(ctx context.Context, m *lexicon.Mapping) (bool, error) {
	return s.UpsertSeedFn(ctx, m)
}

func (s *MappingService) InsertSuggested(ctx context.Context, m *lexicon.Mapping) (bool, error) {
	return s.InsertSuggestedFn(ctx, m)
}

func (s *MappingService) FindMappingByID(ctx context.Context, id string) (*lexicon.Mapping, error) {
	return s.FindMappingByIDFn(ctx, id)
}

func (s *MappingService) FindMappings(ctx context.Context, filter lexicon.MappingFilter) ([]*lexicon.Mapping, error) {
	return s.FindMappingsFn(ctx, filter)
}

func (s *MappingService) RecordUsage(ctx context.Context, category lexicon.Category, userTerm string) error {
	return s.RecordUsageFn(ctx, category, userTerm)
}

func (s *MappingService) DeactivateMapping(ctx context.Context, id string) error {
	return s.DeactivateMappingFn(ctx, id)
}

func (s *MappingService) MappingStats(ctx context.Context, since time.Time) (*lexicon.MappingStats, error) {
	return s.MappingStatsFn(ctx, since)
}

func (s *MappingService) PromoteMapping(ctx context.Context, id string) (*lexicon.Mapping, error) {
	return s.PromoteMappingFn(ctx, id)
}
