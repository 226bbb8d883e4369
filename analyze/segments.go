package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fwojciec/lexicon"
)

// RegionCoverage groups entries by detected region and lists the regions
// nobody searched for.
func RegionCoverage(entries []*lexicon.QueryLogEntry) lexicon.RegionCoverage {
	groups := make(map[string][]*lexicon.QueryLogEntry)
	for _, e := range entries {
		for _, r := range e.DetectedRegions {
			r = strings.ToUpper(strings.TrimSpace(r))
			if r == "" {
				continue
			}
			groups[r] = append(groups[r], e)
		}
	}

	out := lexicon.RegionCoverage{
		Regions:  make([]lexicon.RegionStat, 0, len(groups)),
		NoDemand: []string{},
	}
	for region, group := range groups {
		avg := avgRecommendations(group)
		out.Regions = append(out.Regions, lexicon.RegionStat{
			Region:             region,
			QueryCount:         len(group),
			UniqueQueries:      uniqueQueries(group),
			AvgRecommendations: avg,
			Rating:             quality(avg),
		})
	}
	sort.Slice(out.Regions, func(i, j int) bool {
		if out.Regions[i].QueryCount != out.Regions[j].QueryCount {
			return out.Regions[i].QueryCount > out.Regions[j].QueryCount
		}
		return out.Regions[i].Region < out.Regions[j].Region
	})

	for _, r := range lexicon.Regions() {
		if _, ok := groups[r]; !ok {
			out.NoDemand = append(out.NoDemand, r)
		}
	}
	sort.Strings(out.NoDemand)
	return out
}

// CompetitorIntel reports how often each competitor is mentioned and how
// well those searches are served.
func CompetitorIntel(entries []*lexicon.QueryLogEntry) lexicon.CompetitorIntel {
	groups := make(map[string][]*lexicon.QueryLogEntry)
	dict := Competitors()
	for _, e := range entries {
		for _, name := range MatchDictionary(dict, e.Query) {
			groups[name] = append(groups[name], e)
		}
	}

	out := lexicon.CompetitorIntel{Competitors: make([]lexicon.CompetitorStat, 0, len(groups))}
	for name, group := range groups {
		queries := newCounter()
		for _, e := range group {
			queries.add(strings.ToLower(e.Query))
		}
		top := make([]string, 0, clusterTopQueries)
		for _, kc := range queries.byCount() {
			if len(top) == clusterTopQueries {
				break
			}
			top = append(top, kc.Key)
		}

		avg := avgRecommendations(group)
		out.Competitors = append(out.Competitors, lexicon.CompetitorStat{
			Name:               name,
			MentionCount:       len(group),
			AvgRecommendations: avg,
			AvgResponseTimeMs:  avgResponseTime(group),
			TopQueries:         top,
			Quality:            quality(avg),
		})
		out.TotalQueries += len(group)
	}
	sort.Slice(out.Competitors, func(i, j int) bool {
		if out.Competitors[i].MentionCount != out.Competitors[j].MentionCount {
			return out.Competitors[i].MentionCount > out.Competitors[j].MentionCount
		}
		return out.Competitors[i].Name < out.Competitors[j].Name
	})
	return out
}

// QueryTypes breaks entries down by logged query type. Entries without a
// type are counted as "unknown".
func QueryTypes(entries []*lexicon.QueryLogEntry) lexicon.QueryTypeDistribution {
	groups := make(map[string][]*lexicon.QueryLogEntry)
	for _, e := range entries {
		qt := e.QueryType
		if qt == "" {
			qt = "unknown"
		}
		groups[qt] = append(groups[qt], e)
	}

	out := lexicon.QueryTypeDistribution{
		Total: len(entries),
		Types: make([]lexicon.QueryTypeStat, 0, len(groups)),
	}
	for qt, group := range groups {
		out.Types = append(out.Types, lexicon.QueryTypeStat{
			QueryType:          qt,
			Count:              len(group),
			Percentage:         lexicon.Round(float64(len(group))/float64(len(entries))*100, 1),
			AvgRecommendations: avgRecommendations(group),
			AvgResponseTimeMs:  avgResponseTime(group),
		})
	}
	sort.Slice(out.Types, func(i, j int) bool {
		if out.Types[i].Count != out.Types[j].Count {
			return out.Types[i].Count > out.Types[j].Count
		}
		return out.Types[i].QueryType < out.Types[j].QueryType
	})
	return out
}

// Trends buckets entries by UTC day, ISO week and hour of day. Direction
// compares the last two weeks: more than 20% up is increasing, more than
// 20% down is decreasing.
func Trends(entries []*lexicon.QueryLogEntry) lexicon.TemporalTrends {
	daily := make(map[string][]*lexicon.QueryLogEntry)
	weekly := make(map[string][]*lexicon.QueryLogEntry)
	hourly := make(map[int]int)

	for _, e := range entries {
		if e.CreatedAt.IsZero() {
			continue
		}
		ts := e.CreatedAt.UTC()
		day := ts.Format("2006-01-02")
		year, week := ts.ISOWeek()
		wk := fmt.Sprintf("%04d-W%02d", year, week)
		daily[day] = append(daily[day], e)
		weekly[wk] = append(weekly[wk], e)
		hourly[ts.Hour()]++
	}

	out := lexicon.TemporalTrends{
		Daily:     buckets(daily),
		Weekly:    buckets(weekly),
		Hourly:    hourly,
		Direction: lexicon.TrendStable,
	}

	if n := len(out.Weekly); n >= 2 {
		recent := float64(out.Weekly[n-1].Count)
		previous := float64(out.Weekly[n-2].Count)
		switch {
		case recent > previous*1.2:
			out.Direction = lexicon.TrendIncreasing
		case recent < previous*0.8:
			out.Direction = lexicon.TrendDecreasing
		}
	}

	peak := 0
	for _, b := range out.Daily {
		if b.Count > peak {
			peak = b.Count
			out.PeakDay = b.Label
		}
	}

	peakCount := 0
	for h := 0; h < 24; h++ {
		if c := hourly[h]; c > peakCount {
			peakCount = c
			hour := h
			out.PeakHour = &hour
		}
	}
	return out
}

func buckets(groups map[string][]*lexicon.QueryLogEntry) []lexicon.VolumeBucket {
	labels := make([]string, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	out := make([]lexicon.VolumeBucket, 0, len(labels))
	for _, l := range labels {
		out = append(out, lexicon.VolumeBucket{
			Label:              l,
			Count:              len(groups[l]),
			AvgRecommendations: avgRecommendations(groups[l]),
		})
	}
	return out
}

func uniqueQueries(entries []*lexicon.QueryLogEntry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[strings.ToLower(e.Query)] = struct{}{}
	}
	return len(seen)
}
