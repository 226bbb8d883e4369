package lexicon

import "context"

// SuggestionResult reports the outcome of applying candidate mappings.
// Inserted counts only rows actually written; Conflicts counts candidates
// the store already held under the same natural key.
type SuggestionResult struct {
	Candidates  int      `json:"candidates"`
	Filtered    int      `json:"filtered"`
	Invalid     int      `json:"invalid"`
	Conflicts   int      `json:"conflicts"`
	Inserted    int      `json:"inserted"`
	WouldInsert int      `json:"wouldInsert"`
	DryRun      bool     `json:"dryRun"`
	Terms       []string `json:"terms"`
}

// Suggester turns candidate mappings into inactive, unverified rows.
type Suggester interface {
	Apply(ctx context.Context, candidates []Mapping, dryRun bool) (*SuggestionResult, error)
}
