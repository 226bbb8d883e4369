package lexicon

import (
	"context"
	"time"
)

// EnrichOptions configures a batch enrichment run.
type EnrichOptions struct {
	Limit  int  `json:"limit"`
	DryRun bool `json:"dryRun"`

	// StaleBefore also selects items enriched before this time. Their
	// pages are fetched again and unchanged text skips the model call.
	StaleBefore *time.Time `json:"staleBefore,omitempty"`
}

// EnrichResult counts the outcome of an enrichment run.
type EnrichResult struct {
	Selected  int  `json:"selected"`
	Processed int  `json:"processed"`
	Enriched  int  `json:"enriched"`
	Unchanged int  `json:"unchanged"`
	Failed    int  `json:"failed"`
	DryRun    bool `json:"dryRun"`
}

// Enricher adds model-generated summaries, tags and keywords to content.
type Enricher interface {
	Enrich(ctx context.Context, opts EnrichOptions) (*EnrichResult, error)
}

// TagChange is a rewritten tag field.
type TagChange struct {
	ContentID string `json:"contentId"`
	Field     string `json:"field"`
	Before    string `json:"before"`
	After     string `json:"after"`
}

// HygieneResult reports a tag normalization pass.
type HygieneResult struct {
	Scanned int         `json:"scanned"`
	Changed int         `json:"changed"`
	Updated int         `json:"updated"`
	DryRun  bool        `json:"dryRun"`
	Changes []TagChange `json:"changes"`
}

// TagFixer normalizes stored tag strings.
type TagFixer interface {
	FixTags(ctx context.Context, dryRun bool) (*HygieneResult, error)
}

// AuditOptions configures a content audit.
type AuditOptions struct {
	SkipAI bool `json:"skipAi"`
	DryRun bool `json:"dryRun"`
}

// AuditMetrics counts inventory problems.
type AuditMetrics struct {
	Total                int `json:"total"`
	MissingTags          int `json:"missingTags"`
	MissingKeywords      int `json:"missingKeywords"`
	MissingSummaries     int `json:"missingSummaries"`
	NotEnriched          int `json:"notEnriched"`
	TaggingOpportunities int `json:"taggingOpportunities"`
	ExtractionErrors     int `json:"extractionErrors"`
	NoURL                int `json:"noUrl"`
	DuplicateLinks       int `json:"duplicateLinks"`
}

// FlaggedContent is an item with at least one audit issue.
type FlaggedContent struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Type                string   `json:"type"`
	Region              string   `json:"region"`
	Issues              []string `json:"issues"`
	ExtractedTextLength int      `json:"extractedTextLength"`
}

// DuplicateGroup is a set of items sharing the same normalized link.
type DuplicateGroup struct {
	Link string   `json:"link"`
	IDs  []string `json:"ids"`
}

// InventoryRegionCoverage lists which regions have content.
type InventoryRegionCoverage struct {
	Covered     []string `json:"covered"`
	Missing     []string `json:"missing"`
	CoveragePct float64  `json:"coveragePct"`
}

// AuditNotes is the model's prioritization of audit findings.
type AuditNotes struct {
	AIStatus
	Summary    string   `json:"summary,omitempty"`
	Priorities []string `json:"priorities,omitempty"`
}

// AuditReport is the output of one content audit.
type AuditReport struct {
	ID                   string                  `json:"id,omitempty"`
	Metrics              AuditMetrics            `json:"metrics"`
	TypeDistribution     []KeyCount              `json:"typeDistribution"`
	RegionDistribution   []KeyCount              `json:"regionDistribution"`
	PlatformDistribution []KeyCount              `json:"platformDistribution"`
	RegionCoverage       InventoryRegionCoverage `json:"regionCoverage"`
	Flagged              []FlaggedContent        `json:"flagged"`
	Duplicates           []DuplicateGroup        `json:"duplicates"`
	AI                   AuditNotes              `json:"ai"`
}

// Auditor inspects the content inventory for tagging and quality issues.
type Auditor interface {
	Audit(ctx context.Context, opts AuditOptions) (*AuditReport, error)
}
