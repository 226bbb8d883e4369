package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkQueryLogInserts measures appending search log entries, which is
// the store's hottest write path.
func BenchmarkQueryLogInserts(b *testing.B) {
	dbPath := filepath.Join(b.TempDir(), "bench.db")
	db := sqlite.NewDB(dbPath)
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	svc := sqlite.NewQueryLogService(db)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		recs := i % 7
		entry := &lexicon.QueryLogEntry{
			Query:                fmt.Sprintf("career readiness query %d", i%50),
			DetectedRegions:      []string{"TX"},
			QueryType:            "topic",
			RecommendationsCount: &recs,
			CreatedAt:            base.Add(time.Duration(i) * time.Second),
		}
		if err := svc.CreateQueryLog(ctx, entry); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFindQueryLogs measures reading a one-day window out of a week of
// history.
func BenchmarkFindQueryLogs(b *testing.B) {
	dbPath := filepath.Join(b.TempDir(), "bench.db")
	db := sqlite.NewDB(dbPath)
	require.NoError(b, db.Open())
	defer db.Close()

	ctx := context.Background()
	svc := sqlite.NewQueryLogService(db)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 7*24; i++ {
		entry := &lexicon.QueryLogEntry{
			Query:     fmt.Sprintf("query %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(b, svc.CreateQueryLog(ctx, entry))
	}

	since := base.Add(6 * 24 * time.Hour)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := svc.FindQueryLogs(ctx, lexicon.QueryLogFilter{Since: &since}); err != nil {
			b.Fatal(err)
		}
	}
}
