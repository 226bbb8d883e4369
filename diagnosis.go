package lexicon

import "time"

// Overlap quality labels.
const (
	QualityGood = "good"
	QualityFair = "fair"
	QualityPoor = "poor"
)

// Fix types recommended by a diagnosis. Only FixAddTerminology is applied
// automatically.
const (
	FixAddTerminology  = "add_terminology"
	FixImproveKeywords = "improve_keywords"
	FixReEnrich        = "re_enrich"
	FixContentGap      = "content_gap"
)

// Diagnosis explains why a single query returned the results it did.
type Diagnosis struct {
	Query      string           `json:"query"`
	LogEntryID string           `json:"logEntryId,omitempty"`
	Tokens     []string         `json:"tokens"`
	Search     SearchSection    `json:"search"`
	Trace      TerminologyTrace `json:"trace"`
	Overlap    KeywordOverlap   `json:"overlap"`
	Missed     MissedContent    `json:"missed"`
	AI         AIDiagnosis      `json:"ai"`
	AutoFix    *AutoFixOutcome  `json:"autoFix,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// SearchSection summarizes the live search results for the query.
type SearchSection struct {
	ResultCount int             `json:"resultCount"`
	Results     []ResultSummary `json:"results"`
	Error       string          `json:"error,omitempty"`
}

// ResultSummary is a condensed search result.
type ResultSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Platform     string `json:"platform"`
	Tags         string `json:"tags"`
	KeywordCount int    `json:"keywordCount"`
}

// MappingMatch is an active mapping that fired for one or more tokens.
type MappingMatch struct {
	MappingID     string     `json:"mappingId"`
	Category      Category   `json:"category"`
	UserTerm      string     `json:"userTerm"`
	CanonicalTerm string     `json:"canonicalTerm"`
	Provenance    Provenance `json:"provenance"`
	UsageCount    int        `json:"usageCount"`
	MatchedTokens []string   `json:"matchedTokens"`
}

// TerminologyTrace reports which mappings explain the query's tokens.
// Coverage is a percentage in [0,100].
type TerminologyTrace struct {
	TotalMappings int            `json:"totalMappings"`
	Matched       []MappingMatch `json:"matched"`
	Unmatched     []string       `json:"unmatched"`
	Coverage      float64        `json:"coverage"`
}

// OverlapScore is the keyword overlap of a single result.
type OverlapScore struct {
	ContentID       string   `json:"contentId"`
	Title           string   `json:"title"`
	Score           float64  `json:"score"`
	MatchedKeywords []string `json:"matchedKeywords"`
	TotalKeywords   int      `json:"totalKeywords"`
}

// KeywordOverlap scores result keywords against query tokens.
type KeywordOverlap struct {
	Average float64        `json:"average"`
	Results []OverlapScore `json:"results"`
	Quality string         `json:"quality"`
}

// MissedItem is catalog content that matched the query text but was not
// returned by search.
type MissedItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Tags        string `json:"tags"`
	HasKeywords bool   `json:"hasKeywords"`
}

// MissedContent lists content the search should likely have returned.
type MissedContent struct {
	Count int          `json:"count"`
	Items []MissedItem `json:"items"`
	Error string       `json:"error,omitempty"`
}

// Fix is a remediation recommended by the model.
type Fix struct {
	FixType            string   `json:"fixType"`
	Description        string   `json:"description"`
	UserTerm           string   `json:"userTerm,omitempty"`
	StandardTerm       string   `json:"standardTerm,omitempty"`
	Category           Category `json:"category,omitempty"`
	Confidence         float64  `json:"confidence,omitempty"`
	AffectedContentIDs []string `json:"affectedContentIds,omitempty"`
}

// AIDiagnosis is the model's root-cause analysis.
type AIDiagnosis struct {
	AIStatus
	RootCause   string `json:"rootCause,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Fixes       []Fix  `json:"fixes,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// Auto-fix outcome statuses.
const (
	AutoFixApplied        = "applied"
	AutoFixWouldApply     = "would_apply"
	AutoFixNoneApplicable = "none_applicable"
	AutoFixSkipped        = "skipped"
)

// SkippedFix is a fix the auto-fixer did not apply.
type SkippedFix struct {
	Fix    Fix    `json:"fix"`
	Reason string `json:"reason"`
}

// AutoFixOutcome reports what automatic remediation did or would do.
type AutoFixOutcome struct {
	Status     string            `json:"status"`
	Reason     string            `json:"reason,omitempty"`
	DryRun     bool              `json:"dryRun"`
	Candidates []Mapping         `json:"candidates"`
	Skipped    []SkippedFix      `json:"skipped"`
	Result     *SuggestionResult `json:"result,omitempty"`
}
