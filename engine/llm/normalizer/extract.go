package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFence removes a surrounding triple-backtick fence, optionally tagged
// json, and trims the result.
func StripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ExtractJSON strips an optional code fence and parses the remainder.
func ExtractJSON(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(StripFence(text)), &v); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return v, nil
}

// ExtractJSONInto is ExtractJSON decoding into dst.
func ExtractJSONInto(text string, dst any) error {
	if err := json.Unmarshal([]byte(StripFence(text)), dst); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// FirstObject returns the first balanced JSON object in text that decodes.
// Braces inside string literals are ignored, so prose or fences around the
// object and nested braces within string values do not confuse the scan.
func FirstObject(text string) (map[string]any, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := matchObject(text, start); ok {
			var obj map[string]any
			if err := json.Unmarshal([]byte(text[start:end]), &obj); err == nil {
				return obj, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, false
}

// matchObject returns the index just past the brace closing the object that
// opens at start.
func matchObject(text string, start int) (int, bool) {
	depth := 0
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
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
