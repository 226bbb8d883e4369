// Package audit inspects the content inventory for missing metadata,
// extraction failures and duplicate links.
package audit

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.Auditor = (*Auditor)(nil)

// SampleSize bounds the flagged items sent to the model.
const SampleSize = 10

// Auditor produces audit reports. Completer is optional; without it the
// AI note is recorded as skipped.
type Auditor struct {
	Content   lexicon.ContentService
	Reports   lexicon.ReportService
	Completer lexicon.Completer

	Logger *slog.Logger
	Now    func() time.Time
}

func (a *Auditor) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func (a *Auditor) now() time.Time {
	if a.Now == nil {
		return time.Now().UTC()
	}
	return a.Now().UTC()
}

// Audit inspects every content item and persists the result as an audit
// report unless opts.DryRun is set.
func (a *Auditor) Audit(ctx context.Context, opts lexicon.AuditOptions) (*lexicon.AuditReport, error) {
	items, err := a.Content.FindContent(ctx, lexicon.ContentFilter{})
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	r := Inspect(items)
	a.logger().Info("content audited",
		"total", r.Metrics.Total,
		"flagged", len(r.Flagged),
		"duplicates", r.Metrics.DuplicateLinks)

	switch {
	case opts.SkipAI:
		r.AI = lexicon.AuditNotes{AIStatus: lexicon.AISkipped("disabled")}
	case a.Completer == nil:
		r.AI = lexicon.AuditNotes{AIStatus: lexicon.AISkipped(lexicon.ReasonNoCompleter)}
	default:
		r.AI = a.notes(ctx, r)
	}

	if opts.DryRun {
		return r, nil
	}
	if err := a.persist(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Summary is the one-line description stored with a persisted audit.
func Summary(r *lexicon.AuditReport) string {
	if r.AI.Summary != "" {
		return r.AI.Summary
	}
	m := r.Metrics
	return fmt.Sprintf("Audited %d items: %d flagged, %d missing keywords, %d not enriched, %d duplicate links.",
		m.Total, len(r.Flagged), m.MissingKeywords, m.NotEnriched, m.DuplicateLinks)
}

func (a *Auditor) persist(ctx context.Context, r *lexicon.AuditReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode audit: %w", err)
	}
	end := a.now()
	row := &lexicon.Report{
		Type:      lexicon.ReportTypeAudit,
		PeriodEnd: &end,
		Summary:   Summary(r),
		Payload:   payload,
	}
	if err := a.Reports.CreateReport(ctx, row); err != nil {
		return fmt.Errorf("save audit: %w", err)
	}
	r.ID = row.ID
	return nil
}

// Sample returns up to n flagged items, tagging opportunities first, then
// items missing keywords, then by extracted text length.
func Sample(flagged []lexicon.FlaggedContent, n int) []lexicon.FlaggedContent {
	sample := slices.Clone(flagged)
	rank := func(f lexicon.FlaggedContent) (int, int) {
		var opportunity, missing int
		if slices.Contains(f.Issues, IssueTaggingOpportunity) {
			opportunity = 1
		}
		if slices.Contains(f.Issues, IssueMissingKeywords) {
			missing = 1
		}
		return opportunity, missing
	}
	slices.SortStableFunc(sample, func(x, y lexicon.FlaggedContent) int {
		xo, xm := rank(x)
		yo, ym := rank(y)
		return cmp.Or(
			cmp.Compare(yo, xo),
			cmp.Compare(ym, xm),
			cmp.Compare(y.ExtractedTextLength, x.ExtractedTextLength),
		)
	})
	return sample[:min(n, len(sample))]
}

const auditorPrompt = "You are a content database auditor. Analyze metrics and provide actionable, prioritized recommendations. Respond with valid JSON only."

func (a *Auditor) notes(ctx context.Context, r *lexicon.AuditReport) lexicon.AuditNotes {
	sample := Sample(r.Flagged, SampleSize)
	if len(sample) == 0 {
		return lexicon.AuditNotes{AIStatus: lexicon.AISkipped("no flagged content")}
	}
	body, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return lexicon.AuditNotes{AIStatus: lexicon.AIFailed(err)}
	}

	m := r.Metrics
	prompt := fmt.Sprintf(`You are auditing a marketing content database for a K-12 college and career readiness platform.

OVERALL METRICS:
- Total content: %d
- Missing tags: %d
- Missing keywords: %d
- Missing summaries: %d
- Not enriched: %d
- Tagging opportunities (have text, no keywords): %d
- Extraction errors: %d
- Duplicate links: %d

SAMPLE OF FLAGGED CONTENT:
%s

Respond with JSON only:
{
  "health_summary": "2-3 sentence assessment of inventory health",
  "priority_actions": [{"action": "description", "impact": "high|medium|low"}],
  "recommendations": ["specific actionable recommendation"]
}`, m.Total, m.MissingTags, m.MissingKeywords, m.MissingSummaries, m.NotEnriched,
		m.TaggingOpportunities, m.ExtractionErrors, m.DuplicateLinks, body)

	reply, err := a.Completer.Complete(ctx, auditorPrompt, prompt)
	if err != nil {
		a.logger().Warn("audit notes failed", "error", err)
		return lexicon.AuditNotes{AIStatus: lexicon.AIFailed(err)}
	}

	var parsed struct {
		HealthSummary   string `json:"health_summary"`
		PriorityActions []struct {
			Action string `json:"action"`
			Impact string `json:"impact"`
		} `json:"priority_actions"`
		Recommendations []string `json:"recommendations"`
	}
	if err := lexicon.ExtractJSON(reply, &parsed); err != nil {
		return lexicon.AuditNotes{AIStatus: lexicon.AIFailed(err)}
	}

	notes := lexicon.AuditNotes{AIStatus: lexicon.AIOK(), Summary: strings.TrimSpace(parsed.HealthSummary)}
	for _, p := range parsed.PriorityActions {
		action := strings.TrimSpace(p.Action)
		if action == "" {
			continue
		}
		if p.Impact != "" {
			action = fmt.Sprintf("%s (%s impact)", action, p.Impact)
		}
		notes.Priorities = append(notes.Priorities, action)
	}
	for _, rec := range parsed.Recommendations {
		if rec = strings.TrimSpace(rec); rec != "" {
			notes.Priorities = append(notes.Priorities, rec)
		}
	}
	return notes
}
