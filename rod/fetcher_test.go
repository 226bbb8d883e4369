package rod_test

import (
	"context"
	"testing"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_LaunchesLazily(t *testing.T) {
	t.Parallel()

	manager := rod.NewBrowserManager()
	f := rod.NewFetcher(rod.WithManager(manager))

	assert.False(t, manager.Launched())
	require.NoError(t, f.Close())
}

func TestFetcher_Fetch_CanceledContext(t *testing.T) {
	t.Parallel()

	manager := rod.NewBrowserManager()
	f := rod.NewFetcher(rod.WithManager(manager))
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, "https://example.com/guide")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, manager.Launched())
}

func TestFetcher_Fetch_AfterClose(t *testing.T) {
	t.Parallel()

	f := rod.NewFetcher()
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err := f.Fetch(context.Background(), "https://example.com/guide")

	require.Error(t, err)
	assert.Equal(t, lexicon.EINVALID, lexicon.ErrorCode(err))
	assert.Contains(t, lexicon.ErrorMessage(err), "closed")
}
