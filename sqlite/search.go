package sqlite

import (
	"context"
	"strings"

	"github.com/fwojciec/lexicon"
)

// Compile-time interface verification.
var _ lexicon.Searcher = (*SearchService)(nil)

// DefaultSearchLimit is used when Search is called without a limit.
const DefaultSearchLimit = 10

// SearchService is the catalog's live search path. Query tokens are
// expanded with the canonical terms of every active mapping whose user term
// appears in the query, and items are ranked by how many terms they contain.
type SearchService struct {
	db *DB
}

// NewSearchService creates a new SearchService.
func NewSearchService(db *DB) *SearchService {
	return &SearchService{db: db}
}

// Search returns up to limit items ranked by matching term count.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]*lexicon.ContentItem, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	terms, err := s.expand(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, nil
	}

	var score strings.Builder
	var args []any
	for i, term := range terms {
		if i > 0 {
			score.WriteString(" + ")
		}
		score.WriteString(`(CASE WHEN LOWER(title || ' ' || summary || ' ' || enhanced_summary || ' ' || tags || ' ' || auto_tags || ' ' || keywords) LIKE ? ESCAPE '\' THEN 1 ELSE 0 END)`)
		args = append(args, "%"+escapeLike(term)+"%")
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contentColumns+` FROM (
			SELECT *, (`+score.String()+`) AS score FROM content_items
		)
		WHERE score > 0
		ORDER BY score DESC, title ASC
		LIMIT ?
	`, args...)
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

// expand returns the query tokens followed by canonical-term tokens of
// matching active mappings, without duplicates.
func (s *SearchService) expand(ctx context.Context, query string) ([]string, error) {
	seen := make(map[string]struct{})
	var terms []string
	add := func(tokens []string) {
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			terms = append(terms, t)
		}
	}

	tokens := lexicon.Tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}
	add(tokens)

	rows, err := s.db.QueryContext(ctx, `
		SELECT canonical_term FROM terminology_map
		WHERE is_active = 1 AND instr(?, LOWER(user_term)) > 0
		ORDER BY category, user_term
	`, strings.ToLower(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var canonical string
		if err := rows.Scan(&canonical); err != nil {
			return nil, err
		}
		add(lexicon.Tokenize(canonical))
	}

	return terms, rows.Err()
}
