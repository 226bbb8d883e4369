package analyze

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/lexicon"
)

const (
	clusterTopQueries     = 5
	maxUncategorized      = 20
	minTermCount          = 2
	maxMinedTerms         = 100
	maxTermExamples       = 3
	clusterCategoryRegion = lexicon.CategoryRegion
)

// counter counts keys and remembers the order they were first seen in, so
// ties resolve deterministically.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// byCount returns keys ordered by descending count, then first appearance.
func (c *counter) byCount() []lexicon.KeyCount {
	out := make([]lexicon.KeyCount, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, lexicon.KeyCount{Key: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Clusters classifies every query against the category dictionaries. A
// query may land in several clusters; queries matching none are listed as
// uncategorized.
func Clusters(entries []*lexicon.QueryLogEntry) lexicon.TopicClusters {
	type bucket struct {
		keys    *counter
		queries *counter
	}
	buckets := make(map[lexicon.Category]*bucket)
	for _, c := range lexicon.Categories() {
		buckets[c] = &bucket{keys: newCounter(), queries: newCounter()}
	}

	uncategorized := 0
	var examples []string
	seen := make(map[string]struct{})

	dicts := make(map[lexicon.Category][]string)
	for _, c := range lexicon.Categories() {
		dicts[c] = Dictionary(c)
	}

	for _, e := range entries {
		q := strings.ToLower(e.Query)
		matched := false
		for _, c := range lexicon.Categories() {
			b := buckets[c]
			var keys []string
			if c == clusterCategoryRegion {
				keys = e.DetectedRegions
			} else {
				keys = MatchDictionary(dicts[c], q)
			}
			for _, k := range keys {
				b.keys.add(k)
				b.queries.add(q)
				matched = true
			}
		}
		if matched {
			continue
		}
		uncategorized++
		if _, ok := seen[q]; !ok && len(examples) < maxUncategorized {
			seen[q] = struct{}{}
			examples = append(examples, q)
		}
	}

	out := lexicon.TopicClusters{
		Clusters: make(map[lexicon.Category]*lexicon.Cluster, len(buckets)),
		Uncategorized: lexicon.UncategorizedQueries{
			Count:   uncategorized,
			Queries: append([]string{}, examples...),
		},
	}
	for c, b := range buckets {
		breakdown := b.keys.byCount()
		total := 0
		for _, kc := range breakdown {
			total += kc.Count
		}
		top := make([]string, 0, clusterTopQueries)
		for _, kc := range b.queries.byCount() {
			if len(top) == clusterTopQueries {
				break
			}
			top = append(top, kc.Key)
		}
		out.Clusters[c] = &lexicon.Cluster{
			Count:      total,
			Breakdown:  breakdown,
			TopQueries: top,
		}
	}
	return out
}

// MineTerms extracts unigrams and bigrams that recur in the raw queries and
// are not covered by any mapping. Unigrams must be longer than two
// characters and not stopwords; bigrams must not consist only of
// stopwords.
func MineTerms(entries []*lexicon.QueryLogEntry, mappings []*lexicon.Mapping) []lexicon.UnmappedTerm {
	mapped := lexicon.MappedTerms(mappings)
	stop := Stopwords()

	terms := newCounter()
	examples := make(map[string][]string)
	note := func(term, query string) {
		terms.add(term)
		ex := examples[term]
		if len(ex) >= maxTermExamples {
			return
		}
		for _, q := range ex {
			if q == query {
				return
			}
		}
		examples[term] = append(ex, query)
	}

	for _, e := range entries {
		query := lexicon.NormalizeQuery(e.Query)
		words := strings.Fields(query)
		for _, w := range words {
			if utf8.RuneCountInString(w) <= 2 {
				continue
			}
			if _, ok := stop[w]; ok {
				continue
			}
			if _, ok := mapped[w]; ok {
				continue
			}
			note(w, query)
		}
		for i := 0; i+1 < len(words); i++ {
			bigram := words[i] + " " + words[i+1]
			if _, ok := mapped[bigram]; ok {
				continue
			}
			_, stop1 := stop[words[i]]
			_, stop2 := stop[words[i+1]]
			if stop1 && stop2 {
				continue
			}
			note(bigram, query)
		}
	}

	ranked := terms.byCount()
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Key < ranked[j].Key
	})

	out := make([]lexicon.UnmappedTerm, 0, min(len(ranked), maxMinedTerms))
	for _, kc := range ranked {
		if kc.Count < minTermCount || len(out) == maxMinedTerms {
			break
		}
		out = append(out, lexicon.UnmappedTerm{
			Term:     kc.Key,
			Count:    kc.Count,
			Examples: examples[kc.Key],
		})
	}
	return out
}
