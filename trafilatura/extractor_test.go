package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const landingPage = `<!DOCTYPE html>
<html>
<head>
<title>FAFSA Completion Guide | Example Learning</title>
<meta property="og:title" content="FAFSA Completion Guide">
<meta name="description" content="A counselor guide to raising FAFSA completion rates.">
</head>
<body>
<nav class="site-nav">
<ul>
<li><a href="/">Home</a></li>
<li><a href="/resources">Resources</a></li>
<li><a href="/contact">Contact Sales</a></li>
</ul>
</nav>
<main>
<article>
<h1>FAFSA Completion Guide</h1>
<p>Counselors across the district used this guide to raise FAFSA completion among seniors by twelve points in a single year.</p>
<p>The guide walks through family workshops, deadline reminders and the reporting dashboards principals use to track progress.</p>
</article>
</main>
<footer>
<p>Copyright 2025 Example Learning</p>
</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and description", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(landingPage)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
		assert.Contains(t, result.Description, "FAFSA completion rates")
	})

	t.Run("extracts the article body", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(landingPage)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "twelve points")
		assert.Contains(t, result.ContentHTML, "family workshops")
	})

	t.Run("drops navigation and footer", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(landingPage)

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "site-nav")
		assert.NotContains(t, result.ContentHTML, "Copyright 2025 Example Learning")
	})

	t.Run("handles minimal pages", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(`<html><body><p>Simple content</p></body></html>`)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Simple content")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("  ")

		assert.Equal(t, lexicon.EINVALID, lexicon.ErrorCode(err))
	})
}
