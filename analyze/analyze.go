// Package analyze turns the query log into popularity, gap and
// terminology reports.
//
// Every stage is a pure function over a snapshot of the log, the content
// inventory and the active mappings. Analyzer fetches the snapshot, runs
// the stages, calls the optional model-backed stages and persists the
// result.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.ReportAnalyzer = (*Analyzer)(nil)

const (
	promptGaps         = 20
	promptTerms        = 50
	promptMappingSlice = 10
	defaultConfidence  = 0.7
)

// Analyzer produces comprehensive analysis reports. Completer and
// Suggester may be nil.
type Analyzer struct {
	Logs      lexicon.QueryLogService
	Content   lexicon.ContentService
	Mappings  lexicon.MappingService
	Reports   lexicon.ReportService
	Completer lexicon.Completer
	Suggester lexicon.Suggester

	// Thresholds defaults to lexicon.DefaultConfig().Gaps when zero.
	Thresholds lexicon.GapThresholds

	Logger *slog.Logger
	Now    func() time.Time
}

func (a *Analyzer) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func (a *Analyzer) now() time.Time {
	if a.Now == nil {
		return time.Now().UTC()
	}
	return a.Now().UTC()
}

func (a *Analyzer) thresholds() lexicon.GapThresholds {
	if a.Thresholds == (lexicon.GapThresholds{}) {
		return lexicon.DefaultConfig().Gaps
	}
	return a.Thresholds
}

// Analyze runs every stage over the window and persists the report as a
// comprehensive report unless opts.DryRun is set.
func (a *Analyzer) Analyze(ctx context.Context, opts lexicon.AnalyzeOptions) (*lexicon.AnalysisReport, error) {
	now := a.now()
	filter := opts.Window.Filter(now)

	entries, err := a.Logs.FindQueryLogs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load query logs: %w", err)
	}
	inventory, err := a.Content.FindContent(ctx, lexicon.ContentFilter{})
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	active := true
	mappings, err := a.Mappings.FindMappings(ctx, lexicon.MappingFilter{Active: &active})
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w", err)
	}

	a.logger().Debug("analysis snapshot", "entries", len(entries), "content", len(inventory), "mappings", len(mappings))

	r := &lexicon.AnalysisReport{
		GeneratedAt: now,
		Window:      opts.Window,
		Metrics:     Metrics(entries),
		Popularity:  Popularity(entries),
		Clusters:    Clusters(entries),
		Regions:     RegionCoverage(entries),
		Competitors: CompetitorIntel(entries),
		QueryTypes:  QueryTypes(entries),
		Trends:      Trends(entries),
	}
	r.Gaps = Gaps(r.Popularity, inventory, a.thresholds())
	r.Terminology = lexicon.TerminologySection{
		Unmapped:      MineTerms(entries, mappings),
		AISuggestions: []lexicon.TermSuggestion{},
	}
	r.Summary = Summarize(r)
	r.SummarySource = lexicon.SummaryRule

	if skip, reason := a.skipAI(opts); skip {
		status := lexicon.AISkipped(reason)
		r.Recommendations = status
		r.Terminology.AI = status
		r.SummaryAI = status
	} else {
		r.Recommendations = a.recommend(ctx, r.Gaps, inventory)
		r.Terminology.AISuggestions, r.Terminology.AI = a.suggestTerms(ctx, r.Terminology.Unmapped, mappings)
		a.executiveSummary(ctx, r)
	}

	if opts.InsertSuggestions && len(r.Terminology.AISuggestions) > 0 && a.Suggester != nil {
		res, err := a.Suggester.Apply(ctx, candidates(r.Terminology.AISuggestions), opts.DryRun)
		if err != nil {
			return nil, fmt.Errorf("apply term suggestions: %w", err)
		}
		r.Terminology.Applied = res
	}

	if opts.DryRun {
		return r, nil
	}
	if err := a.persist(ctx, r, filter, now); err != nil {
		return nil, err
	}
	return r, nil
}

func (a *Analyzer) skipAI(opts lexicon.AnalyzeOptions) (bool, string) {
	switch {
	case opts.SkipAI:
		return true, "disabled"
	case a.Completer == nil:
		return true, lexicon.ReasonNoCompleter
	}
	return false, ""
}

func (a *Analyzer) persist(ctx context.Context, r *lexicon.AnalysisReport, filter lexicon.QueryLogFilter, now time.Time) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	end := now
	if filter.Until != nil {
		end = *filter.Until
	}
	row := &lexicon.Report{
		Type:                 lexicon.ReportTypeComprehensive,
		PeriodStart:          filter.Since,
		PeriodEnd:            &end,
		TotalQueries:         r.Metrics.TotalQueries,
		ZeroResultCount:      r.Metrics.ZeroResultCount,
		LowConfidenceCount:   r.Metrics.LowConfidenceCount,
		CompetitorQueryCount: r.Metrics.CompetitorQueries,
		Summary:              r.Summary,
		Payload:              payload,
	}
	if err := a.Reports.CreateReport(ctx, row); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	r.ID = row.ID
	return nil
}

// Recent returns up to n persisted comprehensive reports, newest first.
func (a *Analyzer) Recent(ctx context.Context, n int) ([]*lexicon.AnalysisReport, error) {
	typ := lexicon.ReportTypeComprehensive
	rows, err := a.Reports.FindReports(ctx, lexicon.ReportFilter{Type: &typ, Limit: n})
	if err != nil {
		return nil, err
	}
	out := make([]*lexicon.AnalysisReport, 0, len(rows))
	for _, row := range rows {
		var r lexicon.AnalysisReport
		if err := json.Unmarshal(row.Payload, &r); err != nil {
			return nil, lexicon.Errorf(lexicon.EINTERNAL, "decode report %s: %v", row.ID, err)
		}
		r.ID = row.ID
		out = append(out, &r)
	}
	return out, nil
}

func candidates(suggestions []lexicon.TermSuggestion) []lexicon.Mapping {
	out := make([]lexicon.Mapping, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, lexicon.Mapping{
			Category:      s.Category,
			UserTerm:      s.UserTerm,
			CanonicalTerm: s.CanonicalTerm,
			Confidence:    s.Confidence,
			Provenance:    lexicon.ProvenanceLogAnalysis,
		})
	}
	return out
}

const strategistPrompt = `You are a marketing content strategist for a K-12 college and career readiness platform.
You analyze what sales reps search for, compare it to the content that exists,
and recommend specific new content pieces to create. Respond with JSON only.`

func (a *Analyzer) recommend(ctx context.Context, gaps []lexicon.ContentGap, inventory []*lexicon.ContentItem) lexicon.AIStatus {
	if len(gaps) == 0 {
		return lexicon.AISkipped("no gaps")
	}

	var b strings.Builder
	top := gaps[:min(promptGaps, len(gaps))]
	b.WriteString("POPULAR QUERIES WITH POOR/NO RESULTS:\n")
	for _, g := range top {
		fmt.Fprintf(&b, "- %q (%d searches, %v avg results, severity: %s)\n", g.Query, g.SearchCount, g.AvgRecommendations, g.Severity)
	}
	fmt.Fprintf(&b, "\nCURRENT CONTENT INVENTORY (%d items):\n", len(inventory))
	for _, c := range inventory {
		b.WriteString(inventoryLine(c))
		b.WriteByte('\n')
	}
	b.WriteString(`
For each major gap, recommend specific content pieces to create. Return JSON:
{"recommendations": [{"gap_query": "", "title": "", "content_type": "1-Pager|Customer Story|Video|Ebook|Blog|Webinar", "target_audience": "", "priority": "high|medium|low", "rationale": "", "existing_related": ""}]}`)

	reply, err := a.Completer.Complete(ctx, strategistPrompt, b.String())
	if err != nil {
		a.logger().Warn("content recommendations failed", "error", err)
		return lexicon.AIFailed(err)
	}

	var parsed struct {
		Recommendations []struct {
			GapQuery        string `json:"gap_query"`
			Title           string `json:"title"`
			ContentType     string `json:"content_type"`
			TargetAudience  string `json:"target_audience"`
			Priority        string `json:"priority"`
			Rationale       string `json:"rationale"`
			ExistingRelated string `json:"existing_related"`
		} `json:"recommendations"`
	}
	if err := lexicon.ExtractJSON(reply, &parsed); err != nil {
		return lexicon.AIFailed(err)
	}

	index := make(map[string]int, len(gaps))
	for i, g := range gaps {
		index[strings.ToLower(g.Query)] = i
	}
	for _, rec := range parsed.Recommendations {
		i, ok := index[strings.ToLower(strings.TrimSpace(rec.GapQuery))]
		if !ok {
			continue
		}
		gaps[i].Recommendations = append(gaps[i].Recommendations, lexicon.ContentRecommendation{
			GapQuery:        gaps[i].Query,
			Title:           rec.Title,
			ContentType:     rec.ContentType,
			TargetAudience:  rec.TargetAudience,
			Priority:        rec.Priority,
			Rationale:       rec.Rationale,
			ExistingRelated: rec.ExistingRelated,
		})
	}
	return lexicon.AIOK()
}

func inventoryLine(c *lexicon.ContentItem) string {
	region := c.Region
	if region == "" {
		region = "National"
	}
	line := fmt.Sprintf("- [%s] %s | %s | tags: %s", c.Type, truncate(c.Title, 60), region, truncate(c.Tags, 80))
	terms := c.KeywordTerms()
	if len(terms) > 0 {
		line += " | keywords: " + strings.Join(terms[:min(5, len(terms))], ", ")
	}
	return line
}

const terminologyPrompt = `You are a search terminology expert for a K-12 marketing content portal.
The portal holds Customer Stories, Videos, Ebooks, 1-Pagers and similar content.
Suggest mappings from what users typed to canonical catalog terms: misspellings,
synonyms, competitor name variants, acronym expansions, persona standardization.
Respond with JSON only.`

func (a *Analyzer) suggestTerms(ctx context.Context, unmapped []lexicon.UnmappedTerm, mappings []*lexicon.Mapping) ([]lexicon.TermSuggestion, lexicon.AIStatus) {
	out := []lexicon.TermSuggestion{}
	if len(unmapped) == 0 {
		return out, lexicon.AISkipped("no unmapped terms")
	}

	sample := make(map[lexicon.Category]map[string]string)
	for _, m := range mappings {
		s := sample[m.Category]
		if s == nil {
			s = make(map[string]string)
			sample[m.Category] = s
		}
		if len(s) < promptMappingSlice {
			s[m.UserTerm] = m.CanonicalTerm
		}
	}
	existing, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return out, lexicon.AIFailed(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "EXISTING TERMINOLOGY MAPPINGS (sample):\n%s\n\nUNMAPPED SEARCH TERMS:\n", existing)
	for _, t := range unmapped[:min(promptTerms, len(unmapped))] {
		fmt.Fprintf(&b, "- %q (seen %dx) examples: %s\n", t.Term, t.Count, strings.Join(t.Examples, "; "))
	}
	b.WriteString(`
Return JSON:
{"suggestions": [{"user_term": "", "canonical_term": "", "category": "content_type|competitor|persona|topic|feature|region", "confidence": 0.8, "reason": ""}]}`)

	reply, err := a.Completer.Complete(ctx, terminologyPrompt, b.String())
	if err != nil {
		a.logger().Warn("terminology suggestions failed", "error", err)
		return out, lexicon.AIFailed(err)
	}

	var parsed struct {
		Suggestions []struct {
			UserTerm      string  `json:"user_term"`
			CanonicalTerm string  `json:"canonical_term"`
			Category      string  `json:"category"`
			MapType       string  `json:"map_type"`
			Confidence    float64 `json:"confidence"`
			Reason        string  `json:"reason"`
		} `json:"suggestions"`
	}
	if err := lexicon.ExtractJSON(reply, &parsed); err != nil {
		return out, lexicon.AIFailed(err)
	}

	mapped := lexicon.MappedTerms(mappings)
	for _, s := range parsed.Suggestions {
		user := strings.TrimSpace(s.UserTerm)
		if user == "" || strings.TrimSpace(s.CanonicalTerm) == "" {
			continue
		}
		if _, ok := mapped[strings.ToLower(user)]; ok {
			continue
		}
		raw := s.Category
		if raw == "" {
			raw = s.MapType
		}
		category, err := lexicon.ParseCategory(raw)
		if err != nil {
			a.logger().Debug("dropping suggestion with unknown category", "user_term", user, "category", raw)
			continue
		}
		confidence := s.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = defaultConfidence
		}
		out = append(out, lexicon.TermSuggestion{
			UserTerm:      user,
			CanonicalTerm: strings.TrimSpace(s.CanonicalTerm),
			Category:      category,
			Confidence:    confidence,
			Reason:        s.Reason,
		})
	}
	return out, lexicon.AIOK()
}

const consultantPrompt = `You are a marketing analytics consultant for a K-12 college and career readiness platform.
Summarize the search analytics findings as Key Findings, Content Creation Priorities,
Terminology Improvements and Strategic Recommendations. Use markdown. Under 500 words.`

func (a *Analyzer) executiveSummary(ctx context.Context, r *lexicon.AnalysisReport) {
	type query struct {
		Query string  `json:"query"`
		Count int     `json:"count"`
		Avg   float64 `json:"avg_recs"`
	}
	digest := struct {
		TotalQueries int                  `json:"total_queries"`
		TopQueries   []query              `json:"top_5_queries"`
		HighGaps     []query              `json:"high_priority_gaps"`
		Competitors  map[string]int       `json:"competitor_summary"`
		TopRegions   []lexicon.RegionStat `json:"top_regions"`
		Trend        string               `json:"trend"`
		Ideas        []string             `json:"ai_content_recommendations,omitempty"`
	}{
		TotalQueries: r.Metrics.TotalQueries,
		Competitors:  make(map[string]int),
		TopRegions:   r.Regions.Regions[:min(5, len(r.Regions.Regions))],
		Trend:        r.Trends.Direction,
	}
	for _, p := range r.Popularity[:min(5, len(r.Popularity))] {
		digest.TopQueries = append(digest.TopQueries, query{p.Query, p.Count, p.AvgRecommendations})
	}
	for _, g := range r.Gaps {
		if g.Severity == lexicon.GapHigh && len(digest.HighGaps) < 10 {
			digest.HighGaps = append(digest.HighGaps, query{g.Query, g.SearchCount, g.AvgRecommendations})
		}
		for _, rec := range g.Recommendations {
			if len(digest.Ideas) < 10 {
				digest.Ideas = append(digest.Ideas, fmt.Sprintf("%s (%s, %s)", rec.Title, rec.ContentType, rec.Priority))
			}
		}
	}
	for _, c := range r.Competitors.Competitors {
		digest.Competitors[c.Name] = c.MentionCount
	}

	body, err := json.MarshalIndent(digest, "", "  ")
	if err != nil {
		r.SummaryAI = lexicon.AIFailed(err)
		return
	}
	reply, err := a.Completer.Complete(ctx, consultantPrompt, "Summarize these analytics findings and create a content strategy roadmap:\n\n"+string(body))
	if err != nil {
		a.logger().Warn("executive summary failed", "error", err)
		r.SummaryAI = lexicon.AIFailed(err)
		return
	}
	if strings.TrimSpace(reply) == "" {
		r.SummaryAI = lexicon.AIFailed(lexicon.Errorf(lexicon.EINVALID, "empty summary"))
		return
	}
	r.Summary = strings.TrimSpace(reply)
	r.SummarySource = lexicon.SummaryLLM
	r.SummaryAI = lexicon.AIOK()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
