// Package enrich adds model-generated summaries, tags and keywords to
// content items using a bounded worker pool.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/lexicon"
	"golang.org/x/sync/errgroup"
)

var _ lexicon.Enricher = (*Enricher)(nil)

const (
	// DefaultConcurrency is used when Concurrency is not positive.
	DefaultConcurrency = 4

	// PromptChars bounds the page text sent to the model.
	PromptChars = 4000

	// StoredChars bounds the page text kept on the item.
	StoredChars = 5000
)

// Outcome is the result of processing one item.
type Outcome string

// Outcome constants.
const (
	OutcomeEnriched  Outcome = "enriched"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// ProgressEvent reports one processed item.
type ProgressEvent struct {
	Completed int
	Total     int
	ContentID string
	Title     string
	Outcome   Outcome
	Tags      int
	Err       error
}

// ProgressFunc receives events in completion order. Calls are serialized.
type ProgressFunc func(ProgressEvent)

// Enricher enriches content items concurrently. Each item is committed
// on its own; a failed item never affects the others.
type Enricher struct {
	Content   lexicon.ContentService
	Completer lexicon.Completer

	// Fetcher, Extractors and Converter acquire page text for items that
	// have none. Extractors are tried in order.
	Fetcher    lexicon.Fetcher
	Extractors []lexicon.Extractor
	Converter  lexicon.Converter

	Concurrency int
	Progress    ProgressFunc

	Logger *slog.Logger
	Now    func() time.Time
}

func (e *Enricher) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}

func (e *Enricher) now() time.Time {
	if e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now().UTC()
}

// Enrich processes up to opts.Limit items that were never enriched, plus
// stale ones when opts.StaleBefore is set.
func (e *Enricher) Enrich(ctx context.Context, opts lexicon.EnrichOptions) (*lexicon.EnrichResult, error) {
	if e.Completer == nil {
		return nil, lexicon.Errorf(lexicon.EUNAVAILABLE, "%s", lexicon.ReasonNoCompleter)
	}

	items, err := e.Content.FindContent(ctx, lexicon.ContentFilter{
		NeedsEnrichment: true,
		EnrichedBefore:  opts.StaleBefore,
		Limit:           opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("select content: %w", err)
	}

	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	res := &lexicon.EnrichResult{Selected: len(items), DryRun: opts.DryRun}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, item := range items {
		g.Go(func() error {
			outcome, tags, err := e.process(gctx, item, opts.DryRun)

			mu.Lock()
			defer mu.Unlock()
			res.Processed++
			switch outcome {
			case OutcomeEnriched:
				res.Enriched++
			case OutcomeUnchanged:
				res.Unchanged++
			default:
				res.Failed++
				e.logger().Warn("enrichment failed", "id", item.ID, "title", item.Title, "error", err)
			}
			if e.Progress != nil {
				e.Progress(ProgressEvent{
					Completed: res.Processed,
					Total:     res.Selected,
					ContentID: item.ID,
					Title:     item.Title,
					Outcome:   outcome,
					Tags:      tags,
					Err:       err,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	return res, nil
}

// process enriches one item and returns its outcome and new tag count.
func (e *Enricher) process(ctx context.Context, item *lexicon.ContentItem, dryRun bool) (Outcome, int, error) {
	now := e.now()

	text, refreshed, err := e.text(ctx, item)
	if err != nil {
		msg := "could not extract text: " + lexicon.ErrorMessage(err)
		return OutcomeFailed, 0, e.commit(ctx, item.ID, lexicon.ContentUpdate{
			ExtractionError: &msg,
			EnrichedAt:      &now,
		}, dryRun, err)
	}

	if refreshed && item.EnhancedSummary != "" && fingerprint(text) == item.ContentHash {
		if err := e.commit(ctx, item.ID, lexicon.ContentUpdate{EnrichedAt: &now}, dryRun, nil); err != nil {
			return OutcomeFailed, 0, err
		}
		return OutcomeUnchanged, 0, nil
	}

	a, err := e.analyze(ctx, item, text)
	if err != nil {
		msg := "model: " + lexicon.ErrorMessage(err)
		return OutcomeFailed, 0, e.commit(ctx, item.ID, lexicon.ContentUpdate{
			ExtractedText:   &text,
			ExtractionError: &msg,
			EnrichedAt:      &now,
		}, dryRun, err)
	}

	autoTags := strings.Join(a.tags, ", ")
	tags := lexicon.MergeTags(item.Tags, autoTags)
	noError := ""
	upd := lexicon.ContentUpdate{
		Tags:            &tags,
		AutoTags:        &autoTags,
		EnhancedSummary: &a.summary,
		ExtractedText:   &text,
		Keywords:        &a.keywords,
		EnrichedAt:      &now,
		ExtractionError: &noError,
	}
	if err := e.commit(ctx, item.ID, upd, dryRun, nil); err != nil {
		return OutcomeFailed, 0, err
	}
	return OutcomeEnriched, len(a.tags), nil
}

// commit writes upd unless dryRun and returns cause, or the write error
// when there is no cause.
func (e *Enricher) commit(ctx context.Context, id string, upd lexicon.ContentUpdate, dryRun bool, cause error) error {
	if dryRun {
		return cause
	}
	if _, err := e.Content.UpdateContent(ctx, id, upd); err != nil {
		if cause != nil {
			e.logger().Error("record enrichment failure", "id", id, "error", err)
			return cause
		}
		return fmt.Errorf("update content: %w", err)
	}
	return cause
}

// text returns the page text for an item, truncated for storage.
// Previously enriched items with a live link are fetched again and
// reported as refreshed.
func (e *Enricher) text(ctx context.Context, item *lexicon.ContentItem) (string, bool, error) {
	refresh := item.EnrichedAt != nil && item.LiveLink != ""
	if item.ExtractedText != "" && !refresh {
		return truncate(item.ExtractedText, StoredChars), false, nil
	}
	if item.LiveLink == "" {
		return "", false, lexicon.Errorf(lexicon.EINVALID, "no live link")
	}
	if e.Fetcher == nil || len(e.Extractors) == 0 || e.Converter == nil {
		return "", false, lexicon.Errorf(lexicon.EUNAVAILABLE, "page extraction not configured")
	}

	html, err := e.Fetcher.Fetch(ctx, item.LiveLink)
	if err != nil {
		return "", false, err
	}

	var extracted *lexicon.ExtractResult
	for _, x := range e.Extractors {
		if extracted, err = x.Extract(html); err == nil {
			break
		}
	}
	if err != nil {
		return "", false, err
	}

	md, err := e.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return "", false, err
	}
	if extracted.Description != "" && !strings.Contains(md, extracted.Description) {
		md = extracted.Description + "\n\n" + md
	}
	return truncate(md, StoredChars), refresh, nil
}

// fingerprint matches the content_hash stored alongside extracted text.
func fingerprint(text string) string {
	if text == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

type analysis struct {
	summary  string
	tags     []string
	keywords []lexicon.Keyword
}

const analystPrompt = "You are a marketing content analyst. Generate structured metadata. Always respond with valid JSON."

func (e *Enricher) analyze(ctx context.Context, item *lexicon.ContentItem, text string) (*analysis, error) {
	region := item.Region
	if region == "" {
		region = "National/Unknown"
	}
	existing := item.Tags
	if existing == "" {
		existing = "None"
	}
	body := truncate(text, PromptChars)
	if body == "" {
		body = "No text extracted"
	}

	prompt := fmt.Sprintf(`Analyze this marketing content and generate enhanced metadata for search optimization.

CONTENT DETAILS:
- Title: %s
- Type: %s
- Region: %s
- Existing Tags: %s

EXTRACTED TEXT FROM CONTENT:
%s

Respond in JSON with:
1. "enhanced_summary": a 2-3 sentence summary optimized for search. Be specific about what this content covers.
2. "auto_tags": 3-8 tags ACTUALLY present in the content: competitor names only if explicitly mentioned, personas only if directly addressed, topics only if actually covered, and the content format.
3. "keywords": up to 10 objects {"term", "category", "weight"} where weight is relevance from 0 to 1.`, item.Title, item.Type, region, existing, body)

	reply, err := e.Completer.Complete(ctx, analystPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		EnhancedSummary string            `json:"enhanced_summary"`
		AutoTags        json.RawMessage   `json:"auto_tags"`
		Keywords        []lexicon.Keyword `json:"keywords"`
	}
	if err := lexicon.ExtractJSON(reply, &parsed); err != nil {
		return nil, err
	}

	a := &analysis{
		summary:  strings.TrimSpace(parsed.EnhancedSummary),
		tags:     decodeTags(parsed.AutoTags),
		keywords: make([]lexicon.Keyword, 0, len(parsed.Keywords)),
	}
	for _, k := range parsed.Keywords {
		k.Term = strings.TrimSpace(k.Term)
		if k.Term == "" {
			continue
		}
		k.Weight = min(max(k.Weight, 0), 1)
		a.keywords = append(a.keywords, k)
	}
	return a, nil
}

// decodeTags accepts auto_tags as a JSON list or a comma-separated string.
func decodeTags(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		list = strings.Split(s, ",")
	}
	tags := make([]string, 0, len(list))
	for _, t := range list {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
