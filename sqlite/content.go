package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/lexicon"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ lexicon.ContentService = (*ContentService)(nil)

// maxMissedTokens bounds the tokens chained into a missed-content pattern.
const maxMissedTokens = 3

// ContentService implements lexicon.ContentService using SQLite.
type ContentService struct {
	db *DB
}

// NewContentService creates a new ContentService.
func NewContentService(db *DB) *ContentService {
	return &ContentService{db: db}
}

const contentColumns = `id, title, type, platform, region, tags, auto_tags, summary, enhanced_summary,
	extracted_text, content_hash, keywords, live_link, enriched_at, extraction_error, created_at`

// hashContent computes xxHash of content and returns hex string.
func hashContent(content string) string {
	if content == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// CreateContent adds an item to the inventory.
func (s *ContentService) CreateContent(ctx context.Context, item *lexicon.ContentItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	keywords, err := encodeKeywords(item.Keywords)
	if err != nil {
		return err
	}

	item.ID = uuid.New().String()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.db.now()
	}
	item.ContentHash = hashContent(item.ExtractedText)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO content_items (`+contentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.Title, item.Type, item.Platform, item.Region, item.Tags, item.AutoTags,
		item.Summary, item.EnhancedSummary, item.ExtractedText, item.ContentHash, keywords,
		item.LiveLink, formatNullTime(item.EnrichedAt), item.ExtractionError, formatTime(item.CreatedAt))

	return err
}

// FindContentByID retrieves an item by ID.
func (s *ContentService) FindContentByID(ctx context.Context, id string) (*lexicon.ContentItem, error) {
	items, err := s.FindContent(ctx, lexicon.ContentFilter{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, lexicon.Errorf(lexicon.ENOTFOUND, "content not found")
	}
	return items[0], nil
}

// FindContent retrieves items matching the filter in insertion order.
func (s *ContentService) FindContent(ctx context.Context, filter lexicon.ContentFilter) ([]*lexicon.ContentItem, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + contentColumns + ` FROM content_items WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.NeedsEnrichment {
		if filter.EnrichedBefore != nil {
			query.WriteString(" AND (enriched_at IS NULL OR enriched_at < ?)")
			args = append(args, formatTime(*filter.EnrichedBefore))
		} else {
			query.WriteString(" AND enriched_at IS NULL")
		}
	}

	query.WriteString(" ORDER BY created_at ASC, rowid ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	return s.query(ctx, query.String(), args...)
}

// FindMissedContent returns items whose text fields contain the leading
// tokens in order, excluding items the search already returned.
func (s *ContentService) FindMissedContent(ctx context.Context, tokens []string, excludeIDs []string, limit int) ([]*lexicon.ContentItem, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if len(tokens) > maxMissedTokens {
		tokens = tokens[:maxMissedTokens]
	}

	escaped := make([]string, len(tokens))
	for i, t := range tokens {
		escaped[i] = escapeLike(strings.ToLower(t))
	}
	pattern := "%" + strings.Join(escaped, "%") + "%"

	var query strings.Builder
	args := []any{pattern, pattern, pattern, pattern}

	query.WriteString(`SELECT ` + contentColumns + ` FROM content_items WHERE (
		LOWER(title) LIKE ? ESCAPE '\'
		OR LOWER(summary) LIKE ? ESCAPE '\'
		OR LOWER(enhanced_summary) LIKE ? ESCAPE '\'
		OR LOWER(tags) LIKE ? ESCAPE '\')`)

	if len(excludeIDs) > 0 {
		query.WriteString(" AND id NOT IN (")
		query.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(excludeIDs)), ", "))
		query.WriteString(")")
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}

	query.WriteString(" ORDER BY created_at ASC, rowid ASC")
	appendPagination(&query, &args, limit, 0)

	return s.query(ctx, query.String(), args...)
}

// UpdateContent applies a partial update to an item.
func (s *ContentService) UpdateContent(ctx context.Context, id string, upd lexicon.ContentUpdate) (*lexicon.ContentItem, error) {
	item, err := s.FindContentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Tags != nil {
		item.Tags = *upd.Tags
	}
	if upd.AutoTags != nil {
		item.AutoTags = *upd.AutoTags
	}
	if upd.EnhancedSummary != nil {
		item.EnhancedSummary = *upd.EnhancedSummary
	}
	if upd.ExtractedText != nil {
		item.ExtractedText = *upd.ExtractedText
		item.ContentHash = hashContent(item.ExtractedText)
	}
	if upd.Keywords != nil {
		item.Keywords = *upd.Keywords
	}
	if upd.EnrichedAt != nil {
		t := upd.EnrichedAt.UTC()
		item.EnrichedAt = &t
	}
	if upd.ExtractionError != nil {
		item.ExtractionError = *upd.ExtractionError
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	keywords, err := encodeKeywords(item.Keywords)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE content_items
		SET tags = ?, auto_tags = ?, enhanced_summary = ?, extracted_text = ?, content_hash = ?,
			keywords = ?, enriched_at = ?, extraction_error = ?
		WHERE id = ?
	`, item.Tags, item.AutoTags, item.EnhancedSummary, item.ExtractedText, item.ContentHash,
		keywords, formatNullTime(item.EnrichedAt), item.ExtractionError, id)
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *ContentService) query(ctx context.Context, query string, args ...any) ([]*lexicon.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*lexicon.ContentItem
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func encodeKeywords(keywords []lexicon.Keyword) (string, error) {
	if keywords == nil {
		keywords = []lexicon.Keyword{}
	}
	b, err := json.Marshal(keywords)
	if err != nil {
		return "", fmt.Errorf("failed to encode keywords: %w", err)
	}
	return string(b), nil
}

func scanContent(row scanner) (*lexicon.ContentItem, error) {
	var item lexicon.ContentItem
	var keywords, createdAt string
	var enrichedAt sql.NullString

	if err := row.Scan(&item.ID, &item.Title, &item.Type, &item.Platform, &item.Region, &item.Tags,
		&item.AutoTags, &item.Summary, &item.EnhancedSummary, &item.ExtractedText, &item.ContentHash,
		&keywords, &item.LiveLink, &enrichedAt, &item.ExtractionError, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(keywords), &item.Keywords); err != nil {
		return nil, fmt.Errorf("failed to parse keywords: %w", err)
	}

	var err error
	if item.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if item.EnrichedAt, err = parseNullRFC3339(enrichedAt, "enriched_at"); err != nil {
		return nil, err
	}

	return &item, nil
}
