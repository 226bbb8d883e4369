// Package bloom provides the first-pass duplicate link detector used by
// the content audit.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// DefaultFalsePositiveRate is used by NewLinkFilter.
const DefaultFalsePositiveRate = 0.01

// Filter is a Bloom filter over normalized links.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected links with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(max(n, 1), fpRate),
	}
}

// NewLinkFilter creates a filter sized for an inventory of n items.
func NewLinkFilter(n int) *Filter {
	return NewFilter(uint(max(n, 0)), DefaultFalsePositiveRate)
}

// Add adds a link to the filter.
func (f *Filter) Add(link string) {
	f.f.AddString(link)
}

// Test reports whether the link might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(link string) bool {
	return f.f.TestString(link)
}

// Seen adds the link and reports whether it might have been added before.
func (f *Filter) Seen(link string) bool {
	return f.f.TestOrAddString(link)
}

// EstimatedCount returns the approximate number of links in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
