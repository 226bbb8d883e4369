package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fwojciec/lexicon"
)

// maxLineBytes bounds a single JSON line; extracted text can be long.
const maxLineBytes = 4 << 20

// Run executes the import-logs command.
func (c *ImportLogsCmd) Run(deps *Dependencies) error {
	n, err := importLines(c.File, func(e *lexicon.QueryLogEntry) error {
		return deps.Logs.CreateQueryLog(deps.Ctx, e)
	})
	if err != nil {
		return fail(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Imported %d query log entries\n", n)
	return nil
}

// Run executes the import-content command.
func (c *ImportContCmd) Run(deps *Dependencies) error {
	n, err := importLines(c.File, func(item *lexicon.ContentItem) error {
		return deps.Content.CreateContent(deps.Ctx, item)
	})
	if err != nil {
		return fail(deps, err)
	}
	fmt.Fprintf(deps.Stdout, "Imported %d content items\n", n)
	return nil
}

// importLines decodes each non-blank line of the file at path into a T
// and passes it to create. It stops at the first failure and returns the
// number of records created before it.
func importLines[T any](path string, create func(*T) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	n, line := 0, 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return n, lexicon.Errorf(lexicon.EINVALID, "line %d: %v", line, err)
		}
		if err := create(&v); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, err
	}
	return n, nil
}
