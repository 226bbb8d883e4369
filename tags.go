package lexicon

import "strings"

// SplitTags splits a comma-separated tag string, trimming whitespace and
// dropping empty entries.
func SplitTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tags = append(tags, p)
	}
	return tags
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// MergeTags appends tags from b to a, skipping case-insensitive duplicates.
// The first spelling of a tag wins.
func MergeTags(a, b string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range append(SplitTags(a), SplitTags(b)...) {
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return JoinTags(out)
}
