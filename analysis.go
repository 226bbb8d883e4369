package lexicon

import (
	"context"
	"time"
)

// AnalysisWindow bounds the query log range an analysis reads. Start and
// End take precedence over Days; a zero window covers all history.
type AnalysisWindow struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
	Days  int        `json:"days,omitempty"`
}

// Filter converts the window into a query log filter relative to now.
func (w AnalysisWindow) Filter(now time.Time) QueryLogFilter {
	var f QueryLogFilter
	switch {
	case w.Start != nil || w.End != nil:
		f.Since = w.Start
		f.Until = w.End
	case w.Days > 0:
		since := now.Add(-time.Duration(w.Days) * 24 * time.Hour)
		f.Since = &since
	}
	return f
}

// AnalyzeOptions configures a single analyzer run.
type AnalyzeOptions struct {
	Window AnalysisWindow `json:"window"`

	// SkipAI disables every model-backed stage.
	SkipAI bool `json:"skipAi"`

	// InsertSuggestions passes model suggestions to the suggestion engine.
	InsertSuggestions bool `json:"insertSuggestions"`

	// DryRun performs every read and decision but suppresses writes.
	DryRun bool `json:"dryRun"`
}

// ReportAnalyzer produces an AnalysisReport from the query log.
type ReportAnalyzer interface {
	Analyze(ctx context.Context, opts AnalyzeOptions) (*AnalysisReport, error)
}

// AnalysisMetrics are the headline numbers of an analysis run.
type AnalysisMetrics struct {
	TotalQueries       int     `json:"totalQueries"`
	UniqueQueries      int     `json:"uniqueQueries"`
	AvgRecommendations float64 `json:"avgRecommendations"`
	ZeroResultCount    int     `json:"zeroResultCount"`
	LowConfidenceCount int     `json:"lowConfidenceCount"`
	CompetitorQueries  int     `json:"competitorQueries"`
}

// PopularQuery is one normalized query in the popularity ranking.
type PopularQuery struct {
	Rank               int      `json:"rank"`
	Query              string   `json:"query"`
	Count              int      `json:"count"`
	AvgRecommendations float64  `json:"avgRecommendations"`
	AvgResponseTimeMs  int      `json:"avgResponseTimeMs"`
	Complexities       []string `json:"complexities"`
	QueryTypes         []string `json:"queryTypes"`
}

// GapSeverity classifies how badly the catalog serves a query.
type GapSeverity string

// GapSeverity constants.
const (
	GapHigh   GapSeverity = "high"
	GapMedium GapSeverity = "medium"
	GapLow    GapSeverity = "low"
)

// ContentGap is a popular query the catalog serves poorly.
type ContentGap struct {
	Query              string                  `json:"query"`
	SearchCount        int                     `json:"searchCount"`
	AvgRecommendations float64                 `json:"avgRecommendations"`
	ContentMatches     int                     `json:"contentMatches"`
	Severity           GapSeverity             `json:"severity"`
	Score              float64                 `json:"score"`
	Recommendations    []ContentRecommendation `json:"recommendations,omitempty"`
}

// ContentRecommendation is a proposed new piece of content.
type ContentRecommendation struct {
	GapQuery        string `json:"gapQuery"`
	Title           string `json:"title"`
	ContentType     string `json:"contentType"`
	TargetAudience  string `json:"targetAudience"`
	Priority        string `json:"priority"`
	Rationale       string `json:"rationale"`
	ExistingRelated string `json:"existingRelated"`
}

// KeyCount is a label with its occurrence count.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Cluster groups queries that mention terms from one dictionary.
type Cluster struct {
	Count      int        `json:"count"`
	Breakdown  []KeyCount `json:"breakdown"`
	TopQueries []string   `json:"topQueries"`
}

// UncategorizedQueries holds queries no dictionary matched.
type UncategorizedQueries struct {
	Count   int      `json:"count"`
	Queries []string `json:"queries"`
}

// TopicClusters is the clustering of queries by dictionary category.
type TopicClusters struct {
	Clusters      map[Category]*Cluster `json:"clusters"`
	Uncategorized UncategorizedQueries  `json:"uncategorized"`
}

// UnmappedTerm is a frequent query term with no terminology mapping.
type UnmappedTerm struct {
	Term     string   `json:"term"`
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
}

// TermSuggestion is a model-proposed mapping.
type TermSuggestion struct {
	UserTerm      string   `json:"userTerm"`
	CanonicalTerm string   `json:"canonicalTerm"`
	Category      Category `json:"category"`
	Confidence    float64  `json:"confidence"`
	Reason        string   `json:"reason"`
}

// TerminologySection reports mined terms and model suggestions.
type TerminologySection struct {
	Unmapped      []UnmappedTerm    `json:"unmapped"`
	AISuggestions []TermSuggestion  `json:"aiSuggestions"`
	AI            AIStatus          `json:"ai"`
	Applied       *SuggestionResult `json:"applied,omitempty"`
}

// RegionStat is demand and result quality for one region.
type RegionStat struct {
	Region             string  `json:"region"`
	QueryCount         int     `json:"queryCount"`
	UniqueQueries      int     `json:"uniqueQueries"`
	AvgRecommendations float64 `json:"avgRecommendations"`
	Rating             string  `json:"rating"`
}

// RegionCoverage lists regional demand and regions with none.
type RegionCoverage struct {
	Regions  []RegionStat `json:"regions"`
	NoDemand []string     `json:"noDemand"`
}

// CompetitorStat is demand and result quality for one competitor.
type CompetitorStat struct {
	Name               string   `json:"name"`
	MentionCount       int      `json:"mentionCount"`
	AvgRecommendations float64  `json:"avgRecommendations"`
	AvgResponseTimeMs  int      `json:"avgResponseTimeMs"`
	TopQueries         []string `json:"topQueries"`
	Quality            string   `json:"quality"`
}

// CompetitorIntel summarizes competitor mentions.
type CompetitorIntel struct {
	TotalQueries int              `json:"totalQueries"`
	Competitors  []CompetitorStat `json:"competitors"`
}

// QueryTypeStat is the volume and quality of one query type.
type QueryTypeStat struct {
	QueryType          string  `json:"queryType"`
	Count              int     `json:"count"`
	Percentage         float64 `json:"percentage"`
	AvgRecommendations float64 `json:"avgRecommendations"`
	AvgResponseTimeMs  int     `json:"avgResponseTimeMs"`
}

// QueryTypeDistribution breaks the log down by query type.
type QueryTypeDistribution struct {
	Total int             `json:"total"`
	Types []QueryTypeStat `json:"types"`
}

// VolumeBucket is the query volume of one day or ISO week.
type VolumeBucket struct {
	Label              string  `json:"label"`
	Count              int     `json:"count"`
	AvgRecommendations float64 `json:"avgRecommendations"`
}

// Trend directions.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// TemporalTrends describes query volume over time.
type TemporalTrends struct {
	Daily     []VolumeBucket `json:"daily"`
	Weekly    []VolumeBucket `json:"weekly"`
	Hourly    map[int]int    `json:"hourly"`
	Direction string         `json:"direction"`
	PeakDay   string         `json:"peakDay,omitempty"`
	PeakHour  *int           `json:"peakHour,omitempty"`
}

// Summary sources.
const (
	SummaryRule = "rule"
	SummaryLLM  = "llm"
)

// AnalysisReport is the full output of one analyzer run.
type AnalysisReport struct {
	ID          string         `json:"id,omitempty"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Window      AnalysisWindow `json:"window"`

	Metrics         AnalysisMetrics       `json:"metrics"`
	Popularity      []PopularQuery        `json:"popularity"`
	Gaps            []ContentGap          `json:"gaps"`
	Recommendations AIStatus              `json:"recommendations"`
	Clusters        TopicClusters         `json:"clusters"`
	Terminology     TerminologySection    `json:"terminology"`
	Regions         RegionCoverage        `json:"regions"`
	Competitors     CompetitorIntel       `json:"competitors"`
	QueryTypes      QueryTypeDistribution `json:"queryTypes"`
	Trends          TemporalTrends        `json:"trends"`

	Summary       string   `json:"summary"`
	SummarySource string   `json:"summarySource"`
	SummaryAI     AIStatus `json:"summaryAi"`
}

// ReportDelta compares two analysis reports.
type ReportDelta struct {
	PreviousID           string   `json:"previousId"`
	CurrentID            string   `json:"currentId"`
	TotalQueriesChange   int      `json:"totalQueriesChange"`
	ZeroResultChange     int      `json:"zeroResultChange"`
	ZeroResultRateChange float64  `json:"zeroResultRateChange"`
	GapCountChange       int      `json:"gapCountChange"`
	HighGapChange        int      `json:"highGapChange"`
	NewGaps              []string `json:"newGaps"`
	ResolvedGaps         []string `json:"resolvedGaps"`
}
