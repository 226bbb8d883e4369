package analyze

import (
	"slices"
	"strings"

	"github.com/fwojciec/lexicon"
)

var competitors = []string{
	"naviance", "xello", "scoir", "majorclarity", "powerschool",
	"kuder", "youscience", "maia", "maialearning", "ccgi",
}

var contentTypes = []string{
	"video", "webinar", "ebook", "blog", "case study", "customer story",
	"1-pager", "one pager", "fact sheet", "whitepaper", "brochure",
	"press release", "award", "landing page", "asset", "video clip",
}

var features = []string{
	"kri", "plp", "ilp", "ecap", "pulse", "game of life", "transcript",
	"cam", "college app", "course planner", "graduation", "scheduler",
	"career exploration", "interest profiler", "work-based learning",
}

var personas = []string{
	"counselor", "administrator", "principal", "superintendent", "parent",
	"student", "cte", "teacher", "coordinator", "director",
}

var topics = []string{
	"fafsa", "financial aid", "wbl", "work-based learning", "internship",
	"career readiness", "college readiness", "ccmr", "sel", "social emotional",
	"ccr", "post-secondary", "dual enrollment", "cte", "equity",
}

var stopwords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "is", "are", "was", "were", "be", "been",
	"has", "have", "had", "do", "does", "did", "will", "would", "could",
	"should", "may", "might", "can", "shall", "not", "no", "nor",
	"it", "its", "this", "that", "these", "those", "i", "me", "my", "we",
	"our", "you", "your", "he", "she", "they", "them", "their", "what",
	"which", "who", "when", "where", "why", "how", "all", "each", "every",
	"both", "few", "more", "most", "other", "some", "such", "any",
	"show", "find", "get", "give", "about", "like", "need",
	"want", "looking", "search", "content", "schoolinks", "schoolink",
}

// Competitors returns the competitor names matched against raw query text.
func Competitors() []string { return slices.Clone(competitors) }

// ContentTypes returns the content type dictionary.
func ContentTypes() []string { return slices.Clone(contentTypes) }

// Features returns the product feature dictionary.
func Features() []string { return slices.Clone(features) }

// Personas returns the persona dictionary.
func Personas() []string { return slices.Clone(personas) }

// Topics returns the topic dictionary.
func Topics() []string { return slices.Clone(topics) }

// Stopwords returns the words ignored by terminology mining.
func Stopwords() map[string]struct{} {
	m := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		m[w] = struct{}{}
	}
	return m
}

// Dictionary returns the keyword table for a text-matched category, or nil
// for categories that are not matched against query text.
func Dictionary(c lexicon.Category) []string {
	switch c {
	case lexicon.CategoryCompetitor:
		return Competitors()
	case lexicon.CategoryContentType:
		return ContentTypes()
	case lexicon.CategoryFeature:
		return Features()
	case lexicon.CategoryPersona:
		return Personas()
	case lexicon.CategoryTopic:
		return Topics()
	}
	return nil
}

// MatchDictionary returns every dictionary entry that occurs as a
// substring of the lowercased text.
func MatchDictionary(dict []string, text string) []string {
	text = strings.ToLower(text)
	var out []string
	for _, kw := range dict {
		if strings.Contains(text, kw) {
			out = append(out, kw)
		}
	}
	return out
}
