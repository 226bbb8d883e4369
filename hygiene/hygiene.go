// Package hygiene normalizes stored tag strings.
package hygiene

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fwojciec/lexicon"
)

var _ lexicon.TagFixer = (*TagFixer)(nil)

// Tag field names reported in changes.
const (
	FieldTags     = "tags"
	FieldAutoTags = "auto_tags"
)

// NormalizeTags rewrites a tag string as trimmed, comma-separated tags
// with case-insensitive duplicates removed. Array literals such as
// {counselors,"career exploration"} are unwrapped and {} becomes empty.
func NormalizeTags(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = strings.Join(splitArray(s[1:len(s)-1]), ",")
	}
	return lexicon.MergeTags(s, "")
}

// splitArray splits the body of an array literal on commas outside
// double quotes and strips the quotes.
func splitArray(body string) []string {
	var (
		parts   []string
		current strings.Builder
		quoted  bool
	)
	for _, r := range body {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(parts, current.String())
}

// TagFixer normalizes the tags and auto tags of every content item.
type TagFixer struct {
	Content lexicon.ContentService
	Logger  *slog.Logger
}

func (f *TagFixer) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return f.Logger
}

// FixTags scans the inventory and rewrites items whose tag fields are
// not already normalized. With dryRun the changes are reported only.
func (f *TagFixer) FixTags(ctx context.Context, dryRun bool) (*lexicon.HygieneResult, error) {
	items, err := f.Content.FindContent(ctx, lexicon.ContentFilter{})
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	res := &lexicon.HygieneResult{Scanned: len(items), DryRun: dryRun, Changes: []lexicon.TagChange{}}
	for _, item := range items {
		tags := NormalizeTags(item.Tags)
		auto := NormalizeTags(item.AutoTags)
		if tags == item.Tags && auto == item.AutoTags {
			continue
		}
		res.Changed++

		var upd lexicon.ContentUpdate
		if tags != item.Tags {
			upd.Tags = &tags
			res.Changes = append(res.Changes, lexicon.TagChange{ContentID: item.ID, Field: FieldTags, Before: item.Tags, After: tags})
		}
		if auto != item.AutoTags {
			upd.AutoTags = &auto
			res.Changes = append(res.Changes, lexicon.TagChange{ContentID: item.ID, Field: FieldAutoTags, Before: item.AutoTags, After: auto})
		}

		if dryRun {
			continue
		}
		if _, err := f.Content.UpdateContent(ctx, item.ID, upd); err != nil {
			return res, fmt.Errorf("update tags of %s: %w", item.ID, err)
		}
		res.Updated++
	}

	f.logger().Info("tag hygiene", "scanned", res.Scanned, "changed", res.Changed, "updated", res.Updated, "dry_run", dryRun)
	return res, nil
}
