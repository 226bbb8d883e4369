package pace_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/mock"
	"github.com/fwojciec/lexicon/pace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleter(t *testing.T) {
	t.Parallel()

	t.Run("first call is immediate", func(t *testing.T) {
		t.Parallel()

		next := &mock.Completer{
			CompleteFn: func(context.Context, string, string) (string, error) { return "ok", nil },
		}
		c := pace.NewCompleter(next, time.Second)

		start := time.Now()
		reply, err := c.Complete(context.Background(), "", "prompt")

		require.NoError(t, err)
		assert.Equal(t, "ok", reply)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("spaces consecutive calls", func(t *testing.T) {
		t.Parallel()

		next := &mock.Completer{
			CompleteFn: func(context.Context, string, string) (string, error) { return "ok", nil },
		}
		c := pace.NewCompleter(next, 100*time.Millisecond)

		_, err := c.Complete(context.Background(), "", "one")
		require.NoError(t, err)

		start := time.Now()
		_, err = c.Complete(context.Background(), "", "two")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("does not retry failures", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		next := &mock.Completer{
			CompleteFn: func(context.Context, string, string) (string, error) {
				calls.Add(1)
				return "", lexicon.Errorf(lexicon.EUNAVAILABLE, "quota")
			},
		}
		c := pace.NewCompleter(next, 0)

		_, err := c.Complete(context.Background(), "", "prompt")

		assert.Equal(t, lexicon.EUNAVAILABLE, lexicon.ErrorCode(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		next := &mock.Completer{
			CompleteFn: func(context.Context, string, string) (string, error) { return "ok", nil },
		}
		c := pace.NewCompleter(next, time.Second)

		_, err := c.Complete(context.Background(), "", "one")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err = c.Complete(ctx, "", "two")
		assert.Error(t, err)
	})
}

func TestSearcher(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	next := &mock.Searcher{
		SearchFn: func(_ context.Context, query string, limit int) ([]*lexicon.ContentItem, error) {
			calls.Add(1)
			return []*lexicon.ContentItem{{ID: "c1", Title: query}}, nil
		},
	}
	s := pace.NewSearcher(next, 10*time.Millisecond)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := s.Search(context.Background(), "fafsa", 10)
			assert.NoError(t, err)
			assert.Len(t, items, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), calls.Load())
}
