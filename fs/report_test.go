package fs_test

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWriter_WriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes indented JSON under the base dir", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		w := fs.NewReportWriter(dir)

		path, err := w.WriteJSON("reports/diagnosis.json", map[string]int{"total": 3})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "reports", "diagnosis.json"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"total\": 3\n}\n", string(data))

		_, err = os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("absolute paths ignore the base dir", func(t *testing.T) {
		t.Parallel()

		target := filepath.Join(t.TempDir(), "out.json")
		path, err := fs.NewReportWriter("/nonexistent").WriteJSON(target, []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, target, path)

		var got []string
		data, err := os.ReadFile(target)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, []string{"a"}, got)
	})

	t.Run("overwrites existing files", func(t *testing.T) {
		t.Parallel()

		w := fs.NewReportWriter(t.TempDir())
		_, err := w.WriteJSON("r.json", 1)
		require.NoError(t, err)
		path, err := w.WriteJSON("r.json", 2)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "2\n", string(data))
	})

	t.Run("requires a path", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewReportWriter(t.TempDir()).WriteJSON(" ", 1)
		assert.Equal(t, lexicon.EINVALID, lexicon.ErrorCode(err))
	})
}

func TestReportWriter_WritePopularityCSV(t *testing.T) {
	t.Parallel()

	t.Run("writes one row per query", func(t *testing.T) {
		t.Parallel()

		w := fs.NewReportWriter(t.TempDir())
		path, err := w.WritePopularityCSV("popularity.csv", []lexicon.PopularQuery{
			{Rank: 1, Query: "fafsa, guide", Count: 12, AvgRecommendations: 3.5, AvgResponseTimeMs: 240, Complexities: []string{"simple", "complex"}, QueryTypes: []string{"topic"}},
			{Rank: 2, Query: "naviance", Count: 4},
		})
		require.NoError(t, err)

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)

		require.Len(t, rows, 3)
		assert.Equal(t, fs.PopularityHeader, rows[0])
		assert.Equal(t, []string{"1", "fafsa, guide", "12", "3.5", "240", "simple, complex", "topic"}, rows[1])
		assert.Equal(t, []string{"2", "naviance", "4", "0", "0", "", ""}, rows[2])
	})

	t.Run("rejects an empty ranking", func(t *testing.T) {
		t.Parallel()

		_, err := fs.NewReportWriter(t.TempDir()).WritePopularityCSV("p.csv", nil)
		assert.Equal(t, lexicon.EINVALID, lexicon.ErrorCode(err))
	})
}
