package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleter_Complete(t *testing.T) {
	t.Parallel()

	t.Run("delegates to CompleteFn", func(t *testing.T) {
		t.Parallel()

		var gotSystem, gotPrompt string
		c := &mock.Completer{
			CompleteFn: func(_ context.Context, system, prompt string) (string, error) {
				gotSystem, gotPrompt = system, prompt
				return "reply", nil
			},
		}

		reply, err := c.Complete(context.Background(), "sys", "prompt")

		require.NoError(t, err)
		assert.Equal(t, "reply", reply)
		assert.Equal(t, "sys", gotSystem)
		assert.Equal(t, "prompt", gotPrompt)
	})

	t.Run("returns error from CompleteFn", func(t *testing.T) {
		t.Parallel()

		c := &mock.Completer{
			CompleteFn: func(context.Context, string, string) (string, error) {
				return "", lexicon.Errorf(lexicon.EUNAVAILABLE, "quota")
			},
		}

		_, err := c.Complete(context.Background(), "", "prompt")

		assert.Equal(t, lexicon.EUNAVAILABLE, lexicon.ErrorCode(err))
	})
}

func TestMappingService_RecordUsage(t *testing.T) {
	t.Parallel()

	var gotCategory lexicon.Category
	var gotTerm string
	svc := &mock.MappingService{
		RecordUsageFn: func(_ context.Context, c lexicon.Category, term string) error {
			gotCategory, gotTerm = c, term
			return nil
		},
	}

	require.NoError(t, svc.RecordUsage(context.Background(), lexicon.CategoryTopic, "fafsa"))
	assert.Equal(t, lexicon.CategoryTopic, gotCategory)
	assert.Equal(t, "fafsa", gotTerm)
}
