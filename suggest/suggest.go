// Package suggest turns candidate mappings into inactive, unverified rows in
// the terminology store.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.Suggester = (*Engine)(nil)

// Engine filters candidates against the existing vocabulary and inserts
// the remainder through the store's idempotent InsertSuggested.
type Engine struct {
	mappings lexicon.MappingService
	logger   *slog.Logger
}

// NewEngine creates a new Engine. A nil logger discards output.
func NewEngine(mappings lexicon.MappingService, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{mappings: mappings, logger: logger}
}

// Apply drops candidates whose user term is already mapped in any category
// or repeated within the batch, then inserts the rest. In dry-run mode the
// same decisions are made and counted in WouldInsert, but nothing is
// written.
func (e *Engine) Apply(ctx context.Context, candidates []lexicon.Mapping, dryRun bool) (*lexicon.SuggestionResult, error) {
	res := &lexicon.SuggestionResult{
		Candidates: len(candidates),
		DryRun:     dryRun,
		Terms:      []string{},
	}
	if len(candidates) == 0 {
		return res, nil
	}

	existing, err := e.mappings.FindMappings(ctx, lexicon.MappingFilter{})
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}
	mapped := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		mapped[normalize(m.UserTerm)] = struct{}{}
	}

	for _, c := range candidates {
		c.UserTerm = strings.TrimSpace(c.UserTerm)
		c.CanonicalTerm = strings.TrimSpace(c.CanonicalTerm)
		if c.Provenance == "" {
			c.Provenance = lexicon.ProvenanceAISuggested
		}

		if err := c.Validate(); err != nil {
			e.logger.Debug("invalid suggestion", "user_term", c.UserTerm, "err", lexicon.ErrorMessage(err))
			res.Invalid++
			continue
		}

		key := normalize(c.UserTerm)
		if _, ok := mapped[key]; ok {
			res.Filtered++
			continue
		}
		mapped[key] = struct{}{}

		if dryRun {
			res.WouldInsert++
			res.Terms = append(res.Terms, c.UserTerm)
			continue
		}

		m := c
		inserted, err := e.mappings.InsertSuggested(ctx, &m)
		switch {
		case lexicon.ErrorCode(err) == lexicon.EINVALID:
			res.Invalid++
		case err != nil:
			return res, fmt.Errorf("insert suggestion %q: %w", c.UserTerm, err)
		case inserted:
			res.Inserted++
			res.Terms = append(res.Terms, c.UserTerm)
		default:
			res.Conflicts++
		}
	}

	return res, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
