// Package fs writes reports to the local filesystem.
package fs

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fwojciec/lexicon"
)

// PopularityHeader is the first row of a popularity CSV export.
var PopularityHeader = []string{
	"rank", "query", "count", "avg_recommendations",
	"avg_response_time_ms", "complexities", "query_types",
}

// ReportWriter writes report files. Relative paths resolve against
// BaseDir. Each file is written to a temporary sibling and renamed into
// place, so readers never observe a partial file.
type ReportWriter struct {
	BaseDir string
}

// NewReportWriter creates a ReportWriter rooted at baseDir.
func NewReportWriter(baseDir string) *ReportWriter {
	return &ReportWriter{BaseDir: baseDir}
}

func (w *ReportWriter) path(name string) string {
	if filepath.IsAbs(name) || w.BaseDir == "" {
		return name
	}
	return filepath.Join(w.BaseDir, name)
}

// WriteJSON writes v as indented JSON and returns the written path.
func (w *ReportWriter) WriteJSON(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", lexicon.Errorf(lexicon.EINVALID, "encode report: %v", err)
	}
	return w.write(name, append(data, '\n'))
}

// WritePopularityCSV writes the popularity ranking as CSV and returns the
// written path. An empty ranking is rejected.
func (w *ReportWriter) WritePopularityCSV(name string, ranking []lexicon.PopularQuery) (string, error) {
	if len(ranking) == 0 {
		return "", lexicon.Errorf(lexicon.EINVALID, "no popularity data to export")
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(PopularityHeader); err != nil {
		return "", err
	}
	for _, q := range ranking {
		row := []string{
			strconv.Itoa(q.Rank),
			q.Query,
			strconv.Itoa(q.Count),
			strconv.FormatFloat(q.AvgRecommendations, 'f', -1, 64),
			strconv.Itoa(q.AvgResponseTimeMs),
			strings.Join(q.Complexities, ", "),
			strings.Join(q.QueryTypes, ", "),
		}
		if err := cw.Write(row); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	return w.write(name, buf.Bytes())
}

func (w *ReportWriter) write(name string, data []byte) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", lexicon.Errorf(lexicon.EINVALID, "output path required")
	}
	path := w.path(name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return path, nil
}
