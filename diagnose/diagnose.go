// Package diagnose explains why a search query returned the results it did.
package diagnose

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/lexicon"
)

const (
	// SearchLimit is the number of live results requested per diagnosis.
	SearchLimit = 20

	// OverlapResults is the number of top results scored for keyword overlap.
	OverlapResults = 10

	// MissedLimit caps the missed-content probe.
	MissedLimit = 10

	maxMatchedKeywords   = 5
	defaultFixCategory   = lexicon.CategoryTopic
	defaultFixConfidence = 0.7
)

// Options controls a single diagnosis.
type Options struct {
	Query   string
	AutoFix bool
	DryRun  bool
	SkipAI  bool
}

// Diagnoser runs the diagnosis pipeline for one query. Completer and
// Suggester may be nil; the corresponding sections are skipped.
type Diagnoser struct {
	Mappings  lexicon.MappingService
	Content   lexicon.ContentService
	Logs      lexicon.QueryLogService
	Searcher  lexicon.Searcher
	Completer lexicon.Completer
	Suggester lexicon.Suggester
	Logger    *slog.Logger
	Now       func() time.Time
}

func (d *Diagnoser) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

func (d *Diagnoser) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

// DiagnoseLogEntry diagnoses the query recorded by a query log entry.
func (d *Diagnoser) DiagnoseLogEntry(ctx context.Context, id string, opts Options) (*lexicon.Diagnosis, error) {
	entry, err := d.Logs.FindQueryLogByID(ctx, id)
	if err != nil {
		return nil, err
	}
	opts.Query = entry.Query
	diag, err := d.Diagnose(ctx, opts)
	if err != nil {
		return nil, err
	}
	diag.LogEntryID = entry.ID
	return diag, nil
}

// Diagnose runs search, terminology trace, keyword overlap, missed-content
// probe, optional model diagnosis and optional auto-fix for a query.
// Only store failures while loading mappings are returned as errors;
// everything else degrades into the relevant section.
func (d *Diagnoser) Diagnose(ctx context.Context, opts Options) (*lexicon.Diagnosis, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return nil, lexicon.Errorf(lexicon.EINVALID, "query required")
	}

	diag := &lexicon.Diagnosis{
		Query:     query,
		Tokens:    lexicon.Tokenize(query),
		CreatedAt: d.now(),
	}

	results, err := d.Searcher.Search(ctx, query, SearchLimit)
	if err != nil {
		d.logger().Warn("search failed", "query", query, "error", err)
		diag.Search.Error = lexicon.ErrorMessage(err)
		results = nil
	}
	diag.Search.ResultCount = len(results)
	diag.Search.Results = summarize(results)

	active := true
	mappings, err := d.Mappings.FindMappings(ctx, lexicon.MappingFilter{Active: &active})
	if err != nil {
		return nil, fmt.Errorf("load active mappings: %w", err)
	}
	diag.Trace = Trace(diag.Tokens, mappings)
	for _, m := range diag.Trace.Matched {
		if err := d.Mappings.RecordUsage(ctx, m.Category, m.UserTerm); err != nil {
			d.logger().Debug("record usage failed", "user_term", m.UserTerm, "error", err)
		}
	}

	top := results
	if len(top) > OverlapResults {
		top = top[:OverlapResults]
	}
	diag.Overlap = Overlap(diag.Tokens, top)

	diag.Missed = d.missed(ctx, diag.Tokens, results)

	if opts.SkipAI {
		diag.AI.AIStatus = lexicon.AISkipped("disabled")
	} else {
		diag.AI = d.explain(ctx, diag)
	}

	if opts.AutoFix {
		outcome, err := d.autoFix(ctx, diag.AI, opts.DryRun)
		if err != nil {
			return nil, err
		}
		diag.AutoFix = outcome
	}

	return diag, nil
}

func summarize(results []*lexicon.ContentItem) []lexicon.ResultSummary {
	out := make([]lexicon.ResultSummary, 0, len(results))
	for _, r := range results {
		out = append(out, lexicon.ResultSummary{
			ID:           r.ID,
			Title:        r.Title,
			Type:         r.Type,
			Platform:     r.Platform,
			Tags:         r.Tags,
			KeywordCount: len(r.Keywords),
		})
	}
	return out
}

func (d *Diagnoser) missed(ctx context.Context, tokens []string, results []*lexicon.ContentItem) lexicon.MissedContent {
	out := lexicon.MissedContent{Items: []lexicon.MissedItem{}}
	if len(tokens) == 0 {
		return out
	}

	exclude := make([]string, 0, len(results))
	for _, r := range results {
		exclude = append(exclude, r.ID)
	}

	items, err := d.Content.FindMissedContent(ctx, tokens, exclude, MissedLimit)
	if err != nil {
		d.logger().Warn("missed content probe failed", "error", err)
		out.Error = lexicon.ErrorMessage(err)
		return out
	}
	for _, c := range items {
		out.Items = append(out.Items, lexicon.MissedItem{
			ID:          c.ID,
			Title:       c.Title,
			Type:        c.Type,
			Tags:        c.Tags,
			HasKeywords: len(c.Keywords) > 0,
		})
	}
	out.Count = len(out.Items)
	return out
}

// Trace reports which mappings explain the given tokens. A token matches
// a mapping when it equals, contains or is contained in the user term, or
// equals the canonical term. A mapping consumes every token it matches.
//
// Coverage is 100 exactly when Unmatched is empty, except for an empty
// token set, which has nothing to cover and reports 0.
func Trace(tokens []string, mappings []*lexicon.Mapping) lexicon.TerminologyTrace {
	distinct := unique(tokens)
	trace := lexicon.TerminologyTrace{
		TotalMappings: len(mappings),
		Matched:       []lexicon.MappingMatch{},
		Unmatched:     []string{},
	}

	consumed := make(map[string]struct{}, len(distinct))
	for _, m := range mappings {
		user := strings.ToLower(strings.TrimSpace(m.UserTerm))
		if user == "" {
			continue
		}
		canonical := strings.ToLower(strings.TrimSpace(m.CanonicalTerm))

		var hits []string
		for _, tok := range distinct {
			if tok == user || strings.Contains(tok, user) || strings.Contains(user, tok) || tok == canonical {
				hits = append(hits, tok)
			}
		}
		if len(hits) == 0 {
			continue
		}
		for _, h := range hits {
			consumed[h] = struct{}{}
		}
		trace.Matched = append(trace.Matched, lexicon.MappingMatch{
			MappingID:     m.ID,
			Category:      m.Category,
			UserTerm:      m.UserTerm,
			CanonicalTerm: m.CanonicalTerm,
			Provenance:    m.Provenance,
			UsageCount:    m.UsageCount,
			MatchedTokens: hits,
		})
	}

	for _, tok := range distinct {
		if _, ok := consumed[tok]; !ok {
			trace.Unmatched = append(trace.Unmatched, tok)
		}
	}

	coverage := float64(len(consumed)) / float64(max(len(distinct), 1)) * 100
	trace.Coverage = lexicon.Round(min(max(coverage, 0), 100), 1)
	if len(trace.Unmatched) > 0 && trace.Coverage >= 100 {
		trace.Coverage = 99.9
	}
	return trace
}

// Overlap scores each result's keywords against the query tokens. A keyword
// matches a token when either contains the other. Results without keywords
// are not scored.
func Overlap(tokens []string, results []*lexicon.ContentItem) lexicon.KeywordOverlap {
	out := lexicon.KeywordOverlap{Results: []lexicon.OverlapScore{}}

	var total float64
	for _, r := range results {
		terms := r.KeywordTerms()
		if len(terms) == 0 {
			continue
		}
		var matched []string
		for _, k := range terms {
			for _, tok := range tokens {
				if strings.Contains(k, tok) || strings.Contains(tok, k) {
					matched = append(matched, k)
					break
				}
			}
		}
		score := float64(len(matched)) / float64(max(len(terms), 1))
		total += score

		shown := matched
		if len(shown) > maxMatchedKeywords {
			shown = shown[:maxMatchedKeywords]
		}
		out.Results = append(out.Results, lexicon.OverlapScore{
			ContentID:       r.ID,
			Title:           r.Title,
			Score:           lexicon.Round(score, 2),
			MatchedKeywords: append([]string{}, shown...),
			TotalKeywords:   len(terms),
		})
	}

	var avg float64
	if len(out.Results) > 0 {
		avg = total / float64(len(out.Results))
	}
	out.Average = lexicon.Round(avg, 2)
	out.Quality = quality(avg)
	return out
}

func quality(avg float64) string {
	switch {
	case avg > 0.3:
		return lexicon.QualityGood
	case avg < 0.1:
		return lexicon.QualityPoor
	default:
		return lexicon.QualityFair
	}
}

func unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// WorstQueries returns the n most frequent zero-result queries, grouped by
// normalized text and ordered by count then query.
func WorstQueries(entries []*lexicon.QueryLogEntry, n int) []lexicon.KeyCount {
	counts := make(map[string]int)
	for _, e := range entries {
		if !e.ZeroResult() {
			continue
		}
		q := lexicon.NormalizeQuery(e.Query)
		if q == "" {
			continue
		}
		counts[q]++
	}

	out := make([]lexicon.KeyCount, 0, len(counts))
	for q, c := range counts {
		out = append(out, lexicon.KeyCount{Key: q, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Worst loads the query log for the last days and returns its n worst
// zero-result queries. Days defaults to 7.
func (d *Diagnoser) Worst(ctx context.Context, days, n int) ([]lexicon.KeyCount, error) {
	if days <= 0 {
		days = 7
	}
	since := d.now().Add(-time.Duration(days) * 24 * time.Hour)
	entries, err := d.Logs.FindQueryLogs(ctx, lexicon.QueryLogFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("load query logs: %w", err)
	}
	return WorstQueries(entries, n), nil
}

const systemPrompt = `You diagnose search failures in a marketing content catalog for K-12 education.
Users search with informal vocabulary; the catalog uses canonical terms.
Respond with a single JSON object only.`

func (d *Diagnoser) explain(ctx context.Context, diag *lexicon.Diagnosis) lexicon.AIDiagnosis {
	if d.Completer == nil {
		return lexicon.AIDiagnosis{AIStatus: lexicon.AISkipped(lexicon.ReasonNoCompleter)}
	}

	findings, err := json.MarshalIndent(struct {
		Query   string                   `json:"query"`
		Tokens  []string                 `json:"tokens"`
		Search  lexicon.SearchSection    `json:"search"`
		Trace   lexicon.TerminologyTrace `json:"terminology"`
		Overlap lexicon.KeywordOverlap   `json:"keyword_overlap"`
		Missed  lexicon.MissedContent    `json:"missed_content"`
	}{diag.Query, diag.Tokens, diag.Search, diag.Trace, diag.Overlap, diag.Missed}, "", "  ")
	if err != nil {
		return lexicon.AIDiagnosis{AIStatus: lexicon.AIFailed(err)}
	}

	prompt := fmt.Sprintf(`Diagnose why this search performed poorly.

FINDINGS:
%s

Return JSON with this shape:
{
  "root_cause": "one sentence",
  "severity": "high|medium|low",
  "recommended_fixes": [
    {
      "fix_type": "add_terminology|improve_keywords|re_enrich|content_gap",
      "description": "what to do",
      "specifics": {
        "user_term": "term the user typed",
        "standard_term": "canonical catalog term",
        "category": "content_type|competitor|feature|persona|topic|region",
        "affected_content_ids": []
      }
    }
  ],
  "priority": "immediate|soon|backlog",
  "explanation": "short paragraph"
}`, findings)

	reply, err := d.Completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		d.logger().Warn("diagnosis completion failed", "error", err)
		return lexicon.AIDiagnosis{AIStatus: lexicon.AIFailed(err)}
	}

	var parsed aiReply
	if err := lexicon.ExtractJSON(reply, &parsed); err != nil {
		return lexicon.AIDiagnosis{AIStatus: lexicon.AIFailed(err)}
	}
	return parsed.diagnosis()
}

type aiReply struct {
	RootCause        string  `json:"root_cause"`
	Severity         string  `json:"severity"`
	RecommendedFixes []aiFix `json:"recommended_fixes"`
	Priority         string  `json:"priority"`
	Explanation      string  `json:"explanation"`
}

type aiFix struct {
	FixType     string `json:"fix_type"`
	Description string `json:"description"`
	Specifics   struct {
		UserTerm           string   `json:"user_term"`
		StandardTerm       string   `json:"standard_term"`
		Category           string   `json:"category"`
		Confidence         float64  `json:"confidence"`
		AffectedContentIDs []string `json:"affected_content_ids"`
	} `json:"specifics"`
}

func (r aiReply) diagnosis() lexicon.AIDiagnosis {
	out := lexicon.AIDiagnosis{
		AIStatus:    lexicon.AIOK(),
		RootCause:   r.RootCause,
		Severity:    r.Severity,
		Priority:    r.Priority,
		Explanation: r.Explanation,
		Fixes:       make([]lexicon.Fix, 0, len(r.RecommendedFixes)),
	}
	for _, f := range r.RecommendedFixes {
		fix := lexicon.Fix{
			FixType:            strings.ReplaceAll(strings.ToLower(strings.TrimSpace(f.FixType)), "-", "_"),
			Description:        f.Description,
			UserTerm:           strings.TrimSpace(f.Specifics.UserTerm),
			StandardTerm:       strings.TrimSpace(f.Specifics.StandardTerm),
			Confidence:         f.Specifics.Confidence,
			AffectedContentIDs: f.Specifics.AffectedContentIDs,
		}
		if c, err := lexicon.ParseCategory(f.Specifics.Category); err == nil {
			fix.Category = c
		}
		out.Fixes = append(out.Fixes, fix)
	}
	return out
}

func (d *Diagnoser) autoFix(ctx context.Context, ai lexicon.AIDiagnosis, dryRun bool) (*lexicon.AutoFixOutcome, error) {
	out := &lexicon.AutoFixOutcome{
		DryRun:     dryRun,
		Candidates: []lexicon.Mapping{},
		Skipped:    []lexicon.SkippedFix{},
	}
	if ai.Status != lexicon.AIStatusOK {
		out.Status = lexicon.AutoFixSkipped
		out.Reason = "ai diagnosis unavailable"
		return out, nil
	}

	for _, f := range ai.Fixes {
		if f.FixType != lexicon.FixAddTerminology {
			out.Skipped = append(out.Skipped, lexicon.SkippedFix{Fix: f, Reason: "requires manual action"})
			continue
		}
		if f.UserTerm == "" || f.StandardTerm == "" {
			out.Skipped = append(out.Skipped, lexicon.SkippedFix{Fix: f, Reason: "missing user or standard term"})
			continue
		}
		category := f.Category
		if category == "" {
			category = defaultFixCategory
		}
		confidence := f.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = defaultFixConfidence
		}
		out.Candidates = append(out.Candidates, lexicon.Mapping{
			Category:      category,
			UserTerm:      f.UserTerm,
			CanonicalTerm: f.StandardTerm,
			Confidence:    confidence,
			Provenance:    lexicon.ProvenanceAISuggested,
		})
	}

	if len(out.Candidates) == 0 {
		out.Status = lexicon.AutoFixNoneApplicable
		return out, nil
	}
	if d.Suggester == nil {
		out.Status = lexicon.AutoFixSkipped
		out.Reason = "not configured"
		return out, nil
	}

	res, err := d.Suggester.Apply(ctx, out.Candidates, dryRun)
	if err != nil {
		return nil, fmt.Errorf("apply fixes: %w", err)
	}
	out.Result = res
	if dryRun {
		out.Status = lexicon.AutoFixWouldApply
	} else {
		out.Status = lexicon.AutoFixApplied
	}
	return out, nil
}
