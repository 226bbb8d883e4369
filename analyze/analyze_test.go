package analyze_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/analyze"
	"github.com/fwojciec/lexicon/mock"
	"github.com/fwojciec/lexicon/sqlite"
	"github.com/fwojciec/lexicon/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stores struct {
	logs     *sqlite.QueryLogService
	content  *sqlite.ContentService
	mappings *sqlite.MappingService
	reports  *sqlite.ReportService
}

func setupStores(t *testing.T) stores {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return stores{
		logs:     sqlite.NewQueryLogService(db),
		content:  sqlite.NewContentService(db),
		mappings: sqlite.NewMappingService(db),
		reports:  sqlite.NewReportService(db),
	}
}

func (s stores) analyzer(c lexicon.Completer) *analyze.Analyzer {
	return &analyze.Analyzer{
		Logs:      s.logs,
		Content:   s.content,
		Mappings:  s.mappings,
		Reports:   s.reports,
		Completer: c,
		Suggester: suggest.NewEngine(s.mappings, nil),
	}
}

func (s stores) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for range 3 {
		require.NoError(t, s.logs.CreateQueryLog(ctx, &lexicon.QueryLogEntry{Query: "fafsa checklist", RecommendationsCount: ptr(0)}))
	}
	require.NoError(t, s.logs.CreateQueryLog(ctx, &lexicon.QueryLogEntry{Query: "naviance", RecommendationsCount: ptr(4)}))
	require.NoError(t, s.content.CreateContent(ctx, &lexicon.ContentItem{Title: "Career Webinar"}))
	_, err := s.mappings.UpsertSeed(ctx, &lexicon.Mapping{Category: lexicon.CategoryCompetitor, UserTerm: "naviance", CanonicalTerm: "Naviance"})
	require.NoError(t, err)
}

const (
	recommendationsReply = "```json\n" + `{"recommendations": [{"gap_query": "FAFSA Checklist", "title": "FAFSA Checklist One-Pager", "content_type": "1-Pager", "priority": "high"}]}` + "\n```"
	suggestionsReply     = `Sure! {"suggestions": [
		{"user_term": "checklist", "canonical_term": "One-Pager", "category": "content_type", "confidence": 0.8, "reason": "format"},
		{"user_term": "Naviance", "canonical_term": "Naviance", "category": "competitor"},
		{"user_term": "fafsa list", "canonical_term": "FAFSA", "map_type": "topic"},
		{"user_term": "odd", "canonical_term": "Odd", "category": "galaxy"}
	]}`
)

func scriptedCompleter() *mock.Completer {
	return &mock.Completer{
		CompleteFn: func(_ context.Context, _ string, prompt string) (string, error) {
			switch {
			case strings.Contains(prompt, "POPULAR QUERIES"):
				return recommendationsReply, nil
			case strings.Contains(prompt, "UNMAPPED SEARCH TERMS"):
				return suggestionsReply, nil
			default:
				return "## Key Findings\n- FAFSA checklists are missing.", nil
			}
		},
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	t.Run("runs every stage and persists the report", func(t *testing.T) {
		t.Parallel()

		s := setupStores(t)
		s.seed(t)
		a := s.analyzer(scriptedCompleter())
		ctx := context.Background()

		r, err := a.Analyze(ctx, lexicon.AnalyzeOptions{InsertSuggestions: true})
		require.NoError(t, err)

		assert.NotEmpty(t, r.ID)
		assert.Equal(t, 4, r.Metrics.TotalQueries)
		assert.Equal(t, 3, r.Metrics.ZeroResultCount)
		assert.Equal(t, 1, r.Metrics.CompetitorQueries)
		require.NotEmpty(t, r.Gaps)
		assert.Equal(t, "fafsa checklist", r.Gaps[0].Query)
		assert.Equal(t, lexicon.GapHigh, r.Gaps[0].Severity)
		require.Len(t, r.Gaps[0].Recommendations, 1)
		assert.Equal(t, "FAFSA Checklist One-Pager", r.Gaps[0].Recommendations[0].Title)
		assert.Equal(t, lexicon.AIStatusOK, r.Recommendations.Status)

		require.Len(t, r.Terminology.AISuggestions, 2)
		assert.Equal(t, "checklist", r.Terminology.AISuggestions[0].UserTerm)
		assert.Equal(t, lexicon.CategoryTopic, r.Terminology.AISuggestions[1].Category)
		assert.InDelta(t, 0.7, r.Terminology.AISuggestions[1].Confidence, 0.001)
		require.NotNil(t, r.Terminology.Applied)
		assert.Equal(t, 2, r.Terminology.Applied.Inserted)

		assert.Equal(t, lexicon.SummaryLLM, r.SummarySource)
		assert.Contains(t, r.Summary, "Key Findings")

		inactive := false
		pending, err := s.mappings.FindMappings(ctx, lexicon.MappingFilter{Active: &inactive})
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, lexicon.ProvenanceLogAnalysis, pending[0].Provenance)

		recent, err := a.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, r.ID, recent[0].ID)
		assert.Equal(t, r.Gaps[0].Query, recent[0].Gaps[0].Query)
	})

	t.Run("skip ai keeps the rule summary", func(t *testing.T) {
		t.Parallel()

		s := setupStores(t)
		s.seed(t)
		a := s.analyzer(&mock.Completer{
			CompleteFn: func(context.Context, string, string) (string, error) {
				t.Fatal("completer called")
				return "", nil
			},
		})

		r, err := a.Analyze(context.Background(), lexicon.AnalyzeOptions{SkipAI: true, InsertSuggestions: true})
		require.NoError(t, err)

		assert.Equal(t, lexicon.SummaryRule, r.SummarySource)
		assert.True(t, strings.HasPrefix(r.Summary, "Analyzed 4 total queries."))
		assert.Equal(t, lexicon.AIStatusSkipped, r.SummaryAI.Status)
		assert.Equal(t, "disabled", r.Terminology.AI.Reason)
		assert.Nil(t, r.Terminology.Applied)
	})

	t.Run("model failures degrade each stage", func(t *testing.T) {
		t.Parallel()

		s := setupStores(t)
		s.seed(t)
		a := s.analyzer(&mock.Completer{
			CompleteFn: func(context.Context, string, string) (string, error) {
				return "", errors.New("quota exceeded")
			},
		})

		r, err := a.Analyze(context.Background(), lexicon.AnalyzeOptions{})
		require.NoError(t, err)

		assert.Equal(t, lexicon.AIStatusError, r.Recommendations.Status)
		assert.Equal(t, lexicon.AIStatusError, r.Terminology.AI.Status)
		assert.Equal(t, lexicon.AIStatusError, r.SummaryAI.Status)
		assert.Equal(t, lexicon.SummaryRule, r.SummarySource)
		assert.NotEmpty(t, r.ID)
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		t.Parallel()

		s := setupStores(t)
		s.seed(t)
		a := s.analyzer(scriptedCompleter())
		a.Reports = &mock.ReportService{
			CreateReportFn: func(context.Context, *lexicon.Report) error {
				t.Fatal("report persisted in dry run")
				return nil
			},
		}
		ctx := context.Background()

		r, err := a.Analyze(ctx, lexicon.AnalyzeOptions{InsertSuggestions: true, DryRun: true})
		require.NoError(t, err)

		assert.Empty(t, r.ID)
		require.NotNil(t, r.Terminology.Applied)
		assert.Equal(t, 2, r.Terminology.Applied.WouldInsert)
		assert.Zero(t, r.Terminology.Applied.Inserted)

		all, err := s.mappings.FindMappings(ctx, lexicon.MappingFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("window limits the log snapshot", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
		var got lexicon.QueryLogFilter
		a := &analyze.Analyzer{
			Logs: &mock.QueryLogService{
				FindQueryLogsFn: func(_ context.Context, f lexicon.QueryLogFilter) ([]*lexicon.QueryLogEntry, error) {
					got = f
					return nil, nil
				},
			},
			Content: &mock.ContentService{
				FindContentFn: func(context.Context, lexicon.ContentFilter) ([]*lexicon.ContentItem, error) { return nil, nil },
			},
			Mappings: &mock.MappingService{
				FindMappingsFn: func(context.Context, lexicon.MappingFilter) ([]*lexicon.Mapping, error) { return nil, nil },
			},
			Now: func() time.Time { return now },
		}

		r, err := a.Analyze(context.Background(), lexicon.AnalyzeOptions{Window: lexicon.AnalysisWindow{Days: 7}, DryRun: true})
		require.NoError(t, err)

		require.NotNil(t, got.Since)
		assert.Equal(t, now.Add(-7*24*time.Hour), *got.Since)
		assert.Equal(t, lexicon.ReasonNoCompleter, r.Recommendations.Reason)
		assert.Equal(t, "Analyzed 0 total queries.", r.Summary)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		t.Parallel()

		a := &analyze.Analyzer{
			Logs: &mock.QueryLogService{
				FindQueryLogsFn: func(context.Context, lexicon.QueryLogFilter) ([]*lexicon.QueryLogEntry, error) {
					return nil, errors.New("locked")
				},
			},
		}

		_, err := a.Analyze(context.Background(), lexicon.AnalyzeOptions{})
		require.ErrorContains(t, err, "locked")
	})
}
