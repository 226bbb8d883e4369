package main_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/lexicon/cmd/lexicon"
	"github.com/fwojciec/lexicon/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commands = []string{
	"seed", "diagnose", "analyze", "health", "maintain", "mappings", "promote",
	"deactivate", "enrich", "fix-tags", "audit", "import-logs", "import-content",
}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range commands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	helpOutput := stdout.String()
	for _, cmd := range commands {
		assert.Contains(t, helpOutput, cmd)
	}
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "Flags:")
}

func TestMain_Run_NoCommand(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

// run executes one command against the database at dbPath with an
// offline completer.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	m := main.NewMain()
	m.DBPath = dbPath
	m.Completer = &mock.Completer{
		CompleteFn: func(_ context.Context, _, _ string) (string, error) {
			return "", errors.New("offline")
		},
	}

	stdout := &bytes.Buffer{}
	err := m.Run(context.Background(), append([]string{"--db", dbPath}, args...), stdout, &bytes.Buffer{})
	return stdout.String(), err
}

func writeLines(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.jsonl")
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestMain_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("seeding is idempotent", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "lexicon.db")

		out, err := run(t, dbPath, "seed")
		require.NoError(t, err)
		assert.NotContains(t, out, "Seeded 0 mappings")

		out, err = run(t, dbPath, "seed")
		require.NoError(t, err)
		assert.Contains(t, out, "Seeded 0 mappings")

		out, err = run(t, dbPath, "mappings", "--category", "competitor")
		require.NoError(t, err)
		assert.Contains(t, out, "navience -> naviance")
		assert.NotContains(t, out, "1-Pager")
	})

	t.Run("imported content is audited", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "lexicon.db")
		path := writeLines(t,
			`{"title":"Counselor Guide","type":"Ebook","region":"TX","liveLink":"https://example.com/guide"}`,
			``,
			`{"title":"Counselor Guide Copy","type":"Ebook","region":"CA","liveLink":"http://example.com/guide/"}`,
		)

		out, err := run(t, dbPath, "import-content", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Imported 2 content items")

		out, err = run(t, dbPath, "audit", "--skip-ai", "--dry-run")
		require.NoError(t, err)
		assert.Contains(t, out, "Content items:         2")
		assert.Contains(t, out, "Duplicate links:       1")
		assert.Contains(t, out, "AI notes: skipped")
	})

	t.Run("imported logs feed the worst query list", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "lexicon.db")
		path := writeLines(t,
			`{"query":"college essay rubric","recommendationsCount":0}`,
			`{"query":"college essay rubric","recommendationsCount":0}`,
			`{"query":"naviance","recommendationsCount":4}`,
		)

		out, err := run(t, dbPath, "import-logs", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Imported 3 query log entries")

		out, err = run(t, dbPath, "diagnose", "--worst", "5")
		require.NoError(t, err)
		assert.Contains(t, out, "college essay rubric")
		assert.NotContains(t, out, "naviance")
	})

	t.Run("malformed import line is rejected", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "lexicon.db")
		path := writeLines(t,
			`{"title":"Valid"}`,
			`{not json`,
		)

		_, err := run(t, dbPath, "import-content", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
}
