package yaml_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty path returns defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := yaml.LoadConfig("")

		require.NoError(t, err)
		assert.Equal(t, lexicon.DefaultConfig(), cfg)
	})

	t.Run("overrides only the fields present", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "lexicon.yaml")
		doc := "gaps:\n  min_count: 3\nhealth:\n  zero_rate_threshold: 0.2\n  stale_after: 720h\nllm:\n  delay: 1s\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

		cfg, err := yaml.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Gaps.MinCount)
		assert.InDelta(t, 2.0, cfg.Gaps.LowRecommendations, 0.0001)
		assert.InDelta(t, 0.2, cfg.Health.ZeroRateThreshold, 0.0001)
		assert.Equal(t, 720*time.Hour, cfg.Health.StaleAfter)
		assert.Equal(t, time.Second, cfg.LLM.Delay)
		assert.Len(t, cfg.Health.Pipelines, 2)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "lexicon.yaml")
		require.NoError(t, os.WriteFile(path, []byte("gaps:\n  mincount: 3\n"), 0o600))

		_, err := yaml.LoadConfig(path)

		assert.Equal(t, lexicon.EINVALID, lexicon.ErrorCode(err))
	})

	t.Run("rejects out of range thresholds", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "lexicon.yaml")
		require.NoError(t, os.WriteFile(path, []byte("health:\n  zero_rate_threshold: 2\n"), 0o600))

		_, err := yaml.LoadConfig(path)

		assert.Equal(t, lexicon.EINVALID, lexicon.ErrorCode(err))
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
	})
}

func TestLoadSeeds(t *testing.T) {
	t.Parallel()

	t.Run("expands groups into seed mappings", func(t *testing.T) {
		t.Parallel()

		doc := `
- category: content_type
  canonical: 1-Pager
  terms: [one pager, " fact sheet ", ""]
- category: state
  canonical: TX
  terms: [texas]
`
		mappings, err := yaml.LoadSeeds(strings.NewReader(doc))

		require.NoError(t, err)
		require.Len(t, mappings, 3)
		assert.Equal(t, lexicon.CategoryContentType, mappings[0].Category)
		assert.Equal(t, "one pager", mappings[0].UserTerm)
		assert.Equal(t, "1-Pager", mappings[0].CanonicalTerm)
		assert.Equal(t, lexicon.ProvenanceSeed, mappings[0].Provenance)
		assert.Equal(t, "fact sheet", mappings[1].UserTerm)
		assert.Equal(t, lexicon.CategoryRegion, mappings[2].Category)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.LoadSeeds(strings.NewReader("- category: colour\n  canonical: red\n  terms: [crimson]\n"))

		assert.Equal(t, lexicon.EINVALID, lexicon.ErrorCode(err))
	})

	t.Run("rejects missing canonical term", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.LoadSeeds(strings.NewReader("- category: topic\n  terms: [x]\n"))

		assert.Equal(t, lexicon.EINVALID, lexicon.ErrorCode(err))
	})
}

func TestDefaultSeeds(t *testing.T) {
	t.Parallel()

	mappings, err := yaml.DefaultSeeds()
	require.NoError(t, err)
	require.NotEmpty(t, mappings)

	seen := make(map[string]bool)
	for _, m := range mappings {
		require.NoError(t, m.Validate())
		key := string(m.Category) + "|" + strings.ToLower(m.UserTerm)
		assert.False(t, seen[key], "duplicate seed %s", key)
		seen[key] = true
	}
	assert.True(t, seen["content_type|one pager"])
	assert.True(t, seen["competitor|navience"])
	assert.True(t, seen["feature|game of life"])
}
