// Package jsonrepair turns possibly-malformed model output into structured
// data through a cascade of repair strategies. Small local models frequently
// wrap JSON in prose or markdown fencing, drop closing brackets, leave
// trailing commas or emit unquoted keys; each stage fixes one failure class
// and the first successful parse wins.
package jsonrepair

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"
)

var (
	fenceRe         = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)```")
	trailingCommaRe = regexp.MustCompile(`,(\s*[\]}])`)
	danglingCommaRe = regexp.MustCompile(`,\s*$`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([a-zA-Z_][a-zA-Z0-9_]*)\s*:`)
)

// Decode parses raw as JSON, applying repairs as needed. The second return is
// false when no strategy produced valid JSON; Decode never panics and never
// returns a partial parse.
func Decode(raw string) (any, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, false
	}
	cleaned = extractFromMarkdown(cleaned)

	if v, ok := tryParse(cleaned); ok {
		return v, true
	}
	if v, ok := tryParse(closeOpenBrackets(cleaned)); ok {
		return v, true
	}
	if v, ok := tryParse(fixTrailingCommas(cleaned)); ok {
		return v, true
	}
	if v, ok := tryParse(quoteBareKeys(cleaned)); ok {
		return v, true
	}
	combined := closeOpenBrackets(fixTrailingCommas(quoteBareKeys(cleaned)))
	if v, ok := tryParse(combined); ok {
		return v, true
	}
	log.Printf("jsonrepair: all repair strategies failed (%d bytes)", len(raw))
	return nil, false
}

// DecodeObject is Decode restricted to a top-level JSON object.
func DecodeObject(raw string) (map[string]any, bool) {
	v, ok := Decode(raw)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return obj, true
}

func tryParse(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// extractFromMarkdown unwraps a fenced code block, or slices from the first
// opening brace/bracket to the last closing one when prose surrounds the JSON.
// Closers inside string literals do not count: output like
// {"excerpt": "see [Doc1 • p2 • chunk_0]" must not be cut at the bracket in
// the excerpt. When no real closer follows, the tail is kept intact for the
// bracket-closing stage.
func extractFromMarkdown(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	firstBrace := strings.Index(text, "{")
	firstBracket := strings.Index(text, "[")
	start := firstBrace
	switch {
	case firstBrace == -1:
		start = firstBracket
	case firstBracket != -1 && firstBracket < firstBrace:
		start = firstBracket
	}
	if start == -1 {
		return text
	}

	end := lastCloserOutsideStrings(text)
	if end < start {
		return strings.TrimSpace(text[start:])
	}
	return text[start : end+1]
}

// lastCloserOutsideStrings returns the index of the last '}' or ']' that is
// not inside a string literal, or -1 when there is none.
func lastCloserOutsideStrings(text string) int {
	last := -1
	inString := false
	escape := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if escape {
			escape = false
			continue
		}
		if ch == '\\' && inString {
			escape = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && (ch == '}' || ch == ']') {
			last = i
		}
	}
	return last
}

// closeOpenBrackets appends the closers for any brace/bracket left open,
// tracking string-literal state so brackets inside strings are ignored.
// Closers are appended in LIFO order of the unclosed openers.
func closeOpenBrackets(text string) string {
	type opener struct{ ch byte }
	var stack []opener
	inString := false
	escape := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if escape {
			escape = false
			continue
		}
		if ch == '\\' && inString {
			escape = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch ch {
		case '{', '[':
			stack = append(stack, opener{ch})
		case '}':
			if n := len(stack); n > 0 && stack[n-1].ch == '{' {
				stack = stack[:n-1]
			}
		case ']':
			if n := len(stack); n > 0 && stack[n-1].ch == '[' {
				stack = stack[:n-1]
			}
		}
	}

	result := danglingCommaRe.ReplaceAllString(text, "")
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].ch == '{' {
			result += "}"
		} else {
			result += "]"
		}
	}
	return result
}

// fixTrailingCommas removes commas immediately before a closing bracket or
// brace, e.g. [1, 2,] -> [1, 2].
func fixTrailingCommas(text string) string {
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	return danglingCommaRe.ReplaceAllString(text, "")
}

// quoteBareKeys adds quotes around unquoted object keys.
func quoteBareKeys(text string) string {
	return bareKeyRe.ReplaceAllString(text, `$1"$2":`)
}
