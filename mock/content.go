package mock

import (
	"context"

	"github.com/fwojciec/lexicon"
)

var (
	_ lexicon.ContentService = (*ContentService)(nil)
	_ lexicon.Searcher       = (*Searcher)(nil)
)

// ContentService is a mock implementation of lexicon.ContentService.
type ContentService struct {
	CreateContentFn     func(ctx context.Context, item *lexicon.ContentItem) error
	FindContentByIDFn   func(ctx context.Context, id string) (*lexicon.ContentItem, error)
	FindContentFn       func(ctx context.Context, filter lexicon.ContentFilter) ([]*lexicon.ContentItem, error)
	FindMissedContentFn func(ctx context.Context, tokens []string, excludeIDs []string, limit int) ([]*lexicon.ContentItem, error)
	UpdateContentFn     func(ctx context.Context, id string, upd lexicon.ContentUpdate) (*lexicon.ContentItem, error)
}

func (s *ContentService) CreateContent(ctx context.Context, item *lexicon.ContentItem) error {
	return s.CreateContentFn(ctx, item)
}

func (s *ContentService) FindContentByID(ctx context.Context, id string) (*lexicon.ContentItem, error) {
	return s.FindContentByIDFn(ctx, id)
}

func (s *ContentService) FindContent(ctx context.Context, filter lexicon.ContentFilter) ([]*lexicon.ContentItem, error) {
	return s.FindContentFn(ctx, filter)
}

func (s *ContentService) FindMissedContent(ctx context.Context, tokens []string, excludeIDs []string, limit int) ([]*lexicon.ContentItem, error) {
	return s.FindMissedContentFn(ctx, tokens, excludeIDs, limit)
}

func (s *ContentService) UpdateContent(ctx context.Context, id string, upd lexicon.ContentUpdate) (*lexicon.ContentItem, error) {
	return s.UpdateContentFn(ctx, id, upd)
}

// Searcher is a mock implementation of lexicon.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string, limit int) ([]*lexicon.ContentItem, error)
}

func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]*lexicon.ContentItem, error) {
	return s.SearchFn(ctx, query, limit)
}
