package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/lexicon/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewLinkFilter(100)

	assert.False(t, f.Test("example.com/fafsa-guide"))
	f.Add("example.com/fafsa-guide")
	assert.True(t, f.Test("example.com/fafsa-guide"))
	assert.False(t, f.Test("example.com/career-webinar"))
}

func TestFilter_Seen(t *testing.T) {
	t.Parallel()

	f := bloom.NewLinkFilter(100)

	assert.False(t, f.Seen("example.com/case-study"))
	assert.True(t, f.Seen("example.com/case-study"))
	assert.False(t, f.Seen("example.com/one-pager"))
}

func TestFilter_EmptyInventory(t *testing.T) {
	t.Parallel()

	f := bloom.NewLinkFilter(0)

	assert.False(t, f.Seen("example.com/a"))
	assert.True(t, f.Test("example.com/a"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	assert.Equal(t, uint(0), f.EstimatedCount())

	f.Add("example.com/1")
	f.Add("example.com/2")
	f.Add("example.com/3")
	f.Add("example.com/3")

	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const n = 10000

	f := bloom.NewFilter(n, 0.01)
	for i := range n {
		f.Add(fmt.Sprintf("example.com/added/%d", i))
	}

	falsePositives := 0
	for i := range n {
		if f.Test(fmt.Sprintf("example.com/absent/%d", i)) {
			falsePositives++
		}
	}

	rate := float64(falsePositives) / n
	assert.Less(t, rate, 0.02, "false positive rate %f exceeds 2%%", rate)
}
