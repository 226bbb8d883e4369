package lexicon

import (
	"context"
	"strings"
	"time"
)

// Category is the vocabulary dimension a mapping belongs to.
type Category string

// Category constants.
const (
	CategoryContentType Category = "content_type"
	CategoryRegion      Category = "region"
	CategoryTopic       Category = "topic"
	CategoryCompetitor  Category = "competitor"
	CategoryPersona     Category = "persona"
	CategoryFeature     Category = "feature"
)

// Categories lists every valid Category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryContentType,
		CategoryRegion,
		CategoryTopic,
		CategoryCompetitor,
		CategoryPersona,
		CategoryFeature,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, v := range Categories() {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory parses a category name. The legacy name "state" is
// accepted as an alias for region.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "state" {
		return CategoryRegion, nil
	}
	c := Category(s)
	if !c.Valid() {
		return "", Errorf(EINVALID, "unknown category %q", s)
	}
	return c, nil
}

// Provenance records how a mapping came to exist.
type Provenance string

// Provenance constants.
const (
	ProvenanceManual      Provenance = "manual"
	ProvenanceAISuggested Provenance = "ai_suggested"
	ProvenanceLogAnalysis Provenance = "log_analysis"
	ProvenanceSeed        Provenance = "seed"
)

// Valid reports whether p is a known provenance.
func (p Provenance) Valid() bool {
	switch p {
	case ProvenanceManual, ProvenanceAISuggested, ProvenanceLogAnalysis, ProvenanceSeed:
		return true
	}
	return false
}

// Mapping translates a user's term into the catalog's canonical term.
// The pair (Category, lowercase UserTerm) is unique.
type Mapping struct {
	ID            string     `json:"id"`
	Category      Category   `json:"category"`
	UserTerm      string     `json:"userTerm"`
	CanonicalTerm string     `json:"canonicalTerm"`
	Confidence    float64    `json:"confidence"`
	Provenance    Provenance `json:"provenance"`
	UsageCount    int        `json:"usageCount"`
	LastUsedAt    *time.Time `json:"lastUsedAt,omitempty"`
	IsActive      bool       `json:"isActive"`
	IsVerified    bool       `json:"isVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Validate returns an error if the mapping contains invalid fields.
func (m *Mapping) Validate() error {
	if !m.Category.Valid() {
		return Errorf(EINVALID, "mapping category %q invalid", m.Category)
	}
	if strings.TrimSpace(m.UserTerm) == "" {
		return Errorf(EINVALID, "mapping user term required")
	}
	if strings.TrimSpace(m.CanonicalTerm) == "" {
		return Errorf(EINVALID, "mapping canonical term required")
	}
	if m.Confidence < 0 || m.Confidence > 1 {
		return Errorf(EINVALID, "mapping confidence %.2f out of range [0,1]", m.Confidence)
	}
	if m.Provenance != "" && !m.Provenance.Valid() {
		return Errorf(EINVALID, "mapping provenance %q invalid", m.Provenance)
	}
	return nil
}

// MappingService represents the terminology store.
type MappingService interface {
	// UpsertSeed inserts an active, verified seed mapping.
	// Returns false without error if the natural key already exists.
	UpsertSeed(ctx context.Context, m *Mapping) (bool, error)

	// InsertSuggested inserts an inactive, unverified mapping.
	// Returns false without error if the natural key already exists;
	// an existing row is never overwritten.
	InsertSuggested(ctx context.Context, m *Mapping) (bool, error)

	// FindMappingByID retrieves a mapping by ID.
	// Returns ENOTFOUND if the mapping does not exist.
	FindMappingByID(ctx context.Context, id string) (*Mapping, error)

	// FindMappings retrieves mappings matching the filter.
	FindMappings(ctx context.Context, filter MappingFilter) ([]*Mapping, error)

	// RecordUsage increments the usage counter of a mapping.
	// Callers treat this as telemetry and ignore its error.
	RecordUsage(ctx context.Context, category Category, userTerm string) error

	// DeactivateMapping marks a mapping inactive. Mappings are never deleted.
	// Returns ENOTFOUND if the mapping does not exist.
	DeactivateMapping(ctx context.Context, id string) error

	// MappingStats summarizes the store.
	MappingStats(ctx context.Context, since time.Time) (*MappingStats, error)
}

// MappingFilter represents a filter for FindMappings.
type MappingFilter struct {
	Category *Category `json:"category"`
	Active   *bool     `json:"active"`
	UserTerm *string   `json:"userTerm"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// MappingStats summarizes the terminology store.
type MappingStats struct {
	Total        int                `json:"total"`
	Active       int                `json:"active"`
	AddedSince   int                `json:"addedSince"`
	ByProvenance map[Provenance]int `json:"byProvenance"`
}

// Promoter moves a reviewed suggestion into the active vocabulary.
// Review itself happens outside this module.
type Promoter interface {
	PromoteMapping(ctx context.Context, id string) (*Mapping, error)
}

// MappedTerms returns the lowercase set of every user and canonical term.
func MappedTerms(mappings []*Mapping) map[string]struct{} {
	terms := make(map[string]struct{}, len(mappings)*2)
	for _, m := range mappings {
		terms[strings.ToLower(strings.TrimSpace(m.UserTerm))] = struct{}{}
		terms[strings.ToLower(strings.TrimSpace(m.CanonicalTerm))] = struct{}{}
	}
	return terms
}
