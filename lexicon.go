// Package lexicon maps free-text catalog searches onto canonical catalog
// vocabulary, measures how well the catalog answers demand, and mines the
// query log for new vocabulary.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, yaml/).
package lexicon

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinTokenLength is the shortest token kept by Tokenize.
const MinTokenLength = 3

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize lowercases a query and splits it into runs of letters, digits
// and underscores, dropping tokens shorter than MinTokenLength characters.
// Order and duplicates are preserved.
func Tokenize(query string) []string {
	words := wordRe.FindAllString(strings.ToLower(query), -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < MinTokenLength {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// NormalizeQuery trims and lowercases a query for grouping.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
