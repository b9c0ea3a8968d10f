package utils

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Model output is expected to contain exactly one JSON object, possibly
// wrapped in prose or markdown fences. A balanced scan is required rather
// than a greedy regex: payloads contain nested object literals and may be
// preceded or followed by explanatory text.

var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

// ExtractJSONObject locates the first balanced {...} span in raw text and
// runs the repair pipeline: strip code fences, drop trailing commas before
// closing brackets, trim whitespace. The repaired text must parse as JSON.
func ExtractJSONObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start == -1 {
		return "", &ParsingError{Reason: "no JSON object found", RawText: raw}
	}

	end := findMatchingBrace(raw, start)
	if end == -1 {
		return "", &ParsingError{Reason: "unbalanced JSON object", RawText: raw}
	}

	cleaned := RepairJSON(raw[start : end+1])
	if !json.Valid([]byte(cleaned)) {
		return "", &ParsingError{Reason: "repaired text is still not valid JSON", RawText: raw}
	}
	return cleaned, nil
}

// RepairJSON applies the fixed repair steps in order. It does not attempt
// structural surgery; anything deeper than fences and trailing commas is a
// parsing failure upstream.
func RepairJSON(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// findMatchingBrace walks the text from an opening brace, tracking string
// literals and escapes so braces inside strings don't affect depth.
func findMatchingBrace(s string, start int) int {
	if start >= len(s) || s[start] != '{' {
		return -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
