package analyze

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/lexicon"
)

// LowConfidenceThreshold is the recommendation count below which a query
// counts as low confidence.
const LowConfidenceThreshold = 2

// Metrics returns the headline numbers for a log snapshot.
func Metrics(entries []*lexicon.QueryLogEntry) lexicon.AnalysisMetrics {
	m := lexicon.AnalysisMetrics{TotalQueries: len(entries)}
	unique := make(map[string]struct{})
	dict := Competitors()
	for _, e := range entries {
		if q := lexicon.NormalizeQuery(e.Query); q != "" {
			unique[q] = struct{}{}
		}
		recs := e.Recommendations()
		if recs == 0 {
			m.ZeroResultCount++
		}
		if recs < LowConfidenceThreshold {
			m.LowConfidenceCount++
		}
		if len(MatchDictionary(dict, e.Query)) > 0 {
			m.CompetitorQueries++
		}
	}
	m.UniqueQueries = len(unique)
	m.AvgRecommendations = avgRecommendations(entries)
	return m
}

// Popularity groups entries by normalized query and ranks the groups by
// count, breaking ties alphabetically. Ranks start at 1 and have no gaps.
func Popularity(entries []*lexicon.QueryLogEntry) []lexicon.PopularQuery {
	groups := make(map[string][]*lexicon.QueryLogEntry)
	for _, e := range entries {
		q := lexicon.NormalizeQuery(e.Query)
		if q == "" {
			continue
		}
		groups[q] = append(groups[q], e)
	}

	out := make([]lexicon.PopularQuery, 0, len(groups))
	for q, group := range groups {
		complexities := make(map[string]struct{})
		types := make(map[string]struct{})
		for _, e := range group {
			if e.Complexity != "" {
				complexities[e.Complexity] = struct{}{}
			}
			if e.QueryType != "" {
				types[e.QueryType] = struct{}{}
			}
		}
		out = append(out, lexicon.PopularQuery{
			Query:              q,
			Count:              len(group),
			AvgRecommendations: avgRecommendations(group),
			AvgResponseTimeMs:  avgResponseTime(group),
			Complexities:       sortedKeys(complexities),
			QueryTypes:         sortedKeys(types),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// GapScore rewards queries that are frequent and poorly served.
func GapScore(count int, avgRecommendations float64) float64 {
	return float64(count) * (1 / (avgRecommendations + 0.1))
}

// Severity classifies a ranked query against the thresholds. The second
// return is false when the query is not a gap.
func Severity(count int, avgRecommendations float64, contentMatches int, th lexicon.GapThresholds) (lexicon.GapSeverity, bool) {
	switch {
	case avgRecommendations == 0:
		return lexicon.GapHigh, true
	case avgRecommendations < th.LowRecommendations:
		return lexicon.GapMedium, true
	case contentMatches < th.LowMatches && count >= th.LowMinCount:
		return lexicon.GapLow, true
	}
	return "", false
}

// Gaps returns the ranked queries the inventory serves poorly, ordered by
// descending gap score.
func Gaps(ranking []lexicon.PopularQuery, inventory []*lexicon.ContentItem, th lexicon.GapThresholds) []lexicon.ContentGap {
	texts := make([]string, 0, len(inventory))
	for _, c := range inventory {
		texts = append(texts, c.SearchText())
	}

	type scored struct {
		gap   lexicon.ContentGap
		score float64
	}
	var found []scored
	for _, p := range ranking {
		if p.Count < th.MinCount {
			continue
		}
		matches := ContentMatches(p.Query, texts)
		severity, ok := Severity(p.Count, p.AvgRecommendations, matches, th)
		if !ok {
			continue
		}
		score := GapScore(p.Count, p.AvgRecommendations)
		found = append(found, scored{
			gap: lexicon.ContentGap{
				Query:              p.Query,
				SearchCount:        p.Count,
				AvgRecommendations: p.AvgRecommendations,
				ContentMatches:     matches,
				Severity:           severity,
				Score:              lexicon.Round(score, 2),
			},
			score: score,
		})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].score > found[j].score })

	out := make([]lexicon.ContentGap, 0, len(found))
	for _, f := range found {
		out = append(out, f.gap)
	}
	return out
}

// ContentMatches counts the texts that contain any whitespace-separated
// word of query longer than two characters.
func ContentMatches(query string, texts []string) int {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if utf8.RuneCountInString(w) > 2 {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return 0
	}

	n := 0
	for _, text := range texts {
		for _, w := range words {
			if strings.Contains(text, w) {
				n++
				break
			}
		}
	}
	return n
}

func avgRecommendations(entries []*lexicon.QueryLogEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum int
	for _, e := range entries {
		sum += e.Recommendations()
	}
	return lexicon.Round(float64(sum)/float64(len(entries)), 2)
}

// avgResponseTime averages the recorded, positive latencies.
func avgResponseTime(entries []*lexicon.QueryLogEntry) int {
	var sum, n int
	for _, e := range entries {
		if e.ResponseTimeMs == nil || *e.ResponseTimeMs <= 0 {
			continue
		}
		sum += *e.ResponseTimeMs
		n++
	}
	if n == 0 {
		return 0
	}
	return int(lexicon.Round(float64(sum)/float64(n), 0))
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func quality(avg float64) string {
	switch {
	case avg >= 3:
		return "good"
	case avg >= 1:
		return "fair"
	}
	return "poor"
}
