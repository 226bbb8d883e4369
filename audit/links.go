package audit

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/bloom"
)

// NormalizeLink lowercases a link and strips its scheme, query, fragment
// and trailing slashes so that trivially different links compare equal.
func NormalizeLink(link string) string {
	s := strings.ToLower(strings.TrimSpace(link))
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimRight(s, "/")
}

// Duplicates groups items sharing a normalized live link, in the order the
// links first appear. Items without a link are ignored.
func Duplicates(items []*lexicon.ContentItem) []lexicon.DuplicateGroup {
	filter := bloom.NewLinkFilter(len(items))
	byHash := make(map[uint64][]*lexicon.DuplicateGroup)
	var order []*lexicon.DuplicateGroup

	for _, item := range items {
		link := NormalizeLink(item.LiveLink)
		if link == "" {
			continue
		}
		fp := xxhash.Sum64String(link)

		// The filter never misses a link it has seen, so only a positive
		// answer needs the exact lookup.
		if filter.Seen(link) {
			if g := find(byHash[fp], link); g != nil {
				g.IDs = append(g.IDs, item.ID)
				continue
			}
		}
		g := &lexicon.DuplicateGroup{Link: link, IDs: []string{item.ID}}
		byHash[fp] = append(byHash[fp], g)
		order = append(order, g)
	}

	out := []lexicon.DuplicateGroup{}
	for _, g := range order {
		if len(g.IDs) > 1 {
			out = append(out, *g)
		}
	}
	return out
}

func find(groups []*lexicon.DuplicateGroup, link string) *lexicon.DuplicateGroup {
	for _, g := range groups {
		if g.Link == link {
			return g
		}
	}
	return nil
}
