package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLogService_CreateQueryLog(t *testing.T) {
	t.Parallel()

	t.Run("round trips every field", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewQueryLogService(db)
		ctx := context.Background()

		at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
		e := &lexicon.QueryLogEntry{
			Query:                "FAFSA webinar for counselors",
			DetectedRegions:      []string{"TX", "CA"},
			QueryType:            "topic",
			RecommendationsCount: ptr(4),
			ResponseTimeMs:       ptr(850),
			Complexity:           "simple",
			SessionID:            "s1",
			CreatedAt:            at,
		}
		require.NoError(t, svc.CreateQueryLog(ctx, e))
		require.NotEmpty(t, e.ID)

		got, err := svc.FindQueryLogByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, e.Query, got.Query)
		assert.Equal(t, []string{"TX", "CA"}, got.DetectedRegions)
		assert.Equal(t, "topic", got.QueryType)
		require.NotNil(t, got.RecommendationsCount)
		assert.Equal(t, 4, *got.RecommendationsCount)
		require.NotNil(t, got.ResponseTimeMs)
		assert.Equal(t, 850, *got.ResponseTimeMs)
		assert.Equal(t, "simple", got.Complexity)
		assert.Equal(t, "s1", got.SessionID)
		assert.True(t, at.Equal(got.CreatedAt))
	})

	t.Run("keeps null counts null", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewQueryLogService(db)
		ctx := context.Background()

		e := &lexicon.QueryLogEntry{Query: "video"}
		require.NoError(t, svc.CreateQueryLog(ctx, e))

		got, err := svc.FindQueryLogByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Nil(t, got.RecommendationsCount)
		assert.Nil(t, got.ResponseTimeMs)
		assert.Empty(t, got.DetectedRegions)
		assert.True(t, got.ZeroResult())
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("rejects empty query", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewQueryLogService(db)

		err := svc.CreateQueryLog(context.Background(), &lexicon.QueryLogEntry{})
		assert.Equal(t, lexicon.EINVALID, lexicon.ErrorCode(err))
	})
}

func TestQueryLogService_FindQueryLogs(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := sqlite.NewQueryLogService(db)
	ctx := context.Background()

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, q := range []string{"day0", "day1", "day2", "day3"} {
		require.NoError(t, svc.CreateQueryLog(ctx, &lexicon.QueryLogEntry{
			Query:     q,
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}))
	}

	t.Run("returns newest first", func(t *testing.T) {
		t.Parallel()

		all, err := svc.FindQueryLogs(ctx, lexicon.QueryLogFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "day3", all[0].Query)
		assert.Equal(t, "day0", all[3].Query)
	})

	t.Run("since is inclusive and until exclusive", func(t *testing.T) {
		t.Parallel()

		since := base.Add(24 * time.Hour)
		until := base.Add(3 * 24 * time.Hour)
		got, err := svc.FindQueryLogs(ctx, lexicon.QueryLogFilter{Since: &since, Until: &until})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "day2", got[0].Query)
		assert.Equal(t, "day1", got[1].Query)
	})

	t.Run("applies limit", func(t *testing.T) {
		t.Parallel()

		got, err := svc.FindQueryLogs(ctx, lexicon.QueryLogFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "day3", got[0].Query)
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		t.Parallel()

		_, err := svc.FindQueryLogByID(ctx, "missing")
		assert.Equal(t, lexicon.ENOTFOUND, lexicon.ErrorCode(err))
	})
}
