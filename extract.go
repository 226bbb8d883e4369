package lexicon

import (
	"encoding/json"
	"strings"
)

// ExtractJSON decodes the first JSON value embedded in free-form model
// output into v. A fenced ```json block is preferred; otherwise each
// balanced {...} or [...] span is tried in order. Returns EINVALID when
// nothing decodes.
func ExtractJSON(text string, v any) error {
	if block, ok := fencedBlock(text); ok {
		if err := json.Unmarshal([]byte(block), v); err == nil {
			return nil
		}
	}

	for start := 0; start < len(text); {
		i := strings.IndexAny(text[start:], "{[")
		if i < 0 {
			break
		}
		i += start
		end := matchBracket(text, i)
		if end > i {
			if err := json.Unmarshal([]byte(text[i:end+1]), v); err == nil {
				return nil
			}
		}
		start = i + 1
	}

	return Errorf(EINVALID, "no JSON value found in model response")
}

// fencedBlock returns the contents of the first ``` fence, preferring a
// block tagged json.
func fencedBlock(text string) (string, bool) {
	open := "```json"
	i := strings.Index(text, open)
	if i < 0 {
		open = "```"
		i = strings.Index(text, open)
	}
	if i < 0 {
		return "", false
	}
	rest := text[i+len(open):]
	j := strings.Index(rest, "```")
	if j < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:j]), true
}

// matchBracket returns the index of the bracket closing the one at start,
// skipping brackets inside JSON strings. Returns -1 if unbalanced.
func matchBracket(text string, start int) int {
	var stack []byte
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}
