package lexicon

import (
	"context"
	"strings"
	"time"
)

// Keyword is a weighted search term attached to a content item.
type Keyword struct {
	Term     string  `json:"term"`
	Category string  `json:"category,omitempty"`
	Weight   float64 `json:"weight"`
}

// ContentItem is a catalog entry as seen by gap analysis.
type ContentItem struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Type            string     `json:"type"`
	Platform        string     `json:"platform"`
	Region          string     `json:"region"`
	Tags            string     `json:"tags"`
	AutoTags        string     `json:"autoTags"`
	Summary         string     `json:"summary"`
	EnhancedSummary string     `json:"enhancedSummary"`
	ExtractedText   string     `json:"extractedText"`
	ContentHash     string     `json:"contentHash"`
	Keywords        []Keyword  `json:"keywords"`
	LiveLink        string     `json:"liveLink"`
	EnrichedAt      *time.Time `json:"enrichedAt,omitempty"`
	ExtractionError string     `json:"extractionError"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Validate returns an error if the item contains invalid fields.
func (c *ContentItem) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return Errorf(EINVALID, "content title required")
	}
	return nil
}

// SearchText returns the lowercase title, summary and tags joined by spaces.
func (c *ContentItem) SearchText() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{c.Title, c.Summary, c.Tags} {
		if s != "" {
			parts = append(parts, strings.ToLower(s))
		}
	}
	return strings.Join(parts, " ")
}

// KeywordTerms returns every keyword term in lowercase.
func (c *ContentItem) KeywordTerms() []string {
	terms := make([]string, 0, len(c.Keywords))
	for _, k := range c.Keywords {
		if k.Term == "" {
			continue
		}
		terms = append(terms, strings.ToLower(k.Term))
	}
	return terms
}

// ContentService represents the content inventory.
type ContentService interface {
	// CreateContent adds a catalog item.
	CreateContent(ctx context.Context, item *ContentItem) error

	// FindContentByID retrieves an item by ID.
	// Returns ENOTFOUND if the item does not exist.
	FindContentByID(ctx context.Context, id string) (*ContentItem, error)

	// FindContent retrieves items matching the filter.
	FindContent(ctx context.Context, filter ContentFilter) ([]*ContentItem, error)

	// FindMissedContent returns items whose title, summary, enhanced
	// summary or tags contain all tokens in order, excluding the given IDs.
	FindMissedContent(ctx context.Context, tokens []string, excludeIDs []string, limit int) ([]*ContentItem, error)

	// UpdateContent applies a partial update to a single item.
	// Returns ENOTFOUND if the item does not exist.
	UpdateContent(ctx context.Context, id string, upd ContentUpdate) (*ContentItem, error)
}

// ContentFilter represents a filter for FindContent.
type ContentFilter struct {
	ID *string `json:"id"`

	// NeedsEnrichment selects items never enriched, or enriched before
	// EnrichedBefore when that is set.
	NeedsEnrichment bool       `json:"needsEnrichment"`
	EnrichedBefore  *time.Time `json:"enrichedBefore"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ContentUpdate represents a partial update to a content item.
// An empty ExtractionError clears a previously recorded error.
type ContentUpdate struct {
	Tags            *string    `json:"tags"`
	AutoTags        *string    `json:"autoTags"`
	EnhancedSummary *string    `json:"enhancedSummary"`
	ExtractedText   *string    `json:"extractedText"`
	Keywords        *[]Keyword `json:"keywords"`
	EnrichedAt      *time.Time `json:"enrichedAt"`
	ExtractionError *string    `json:"extractionError"`
}

// Searcher executes the live catalog search used by end users.
type Searcher interface {
	// Search returns at most limit items ranked by the live search path.
	Search(ctx context.Context, query string, limit int) ([]*ContentItem, error)
}
