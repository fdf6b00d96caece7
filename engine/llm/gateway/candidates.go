package gateway

import "strings"

// Candidates builds the ordered model list for one request: the preferred
// model first, then the fallback chain. Blank and repeated names are dropped.
// The returned slice is a fresh copy owned by the caller.
func Candidates(preferred string, fallback ...string) []string {
	out := make([]string, 0, len(fallback)+1)
	seen := make(map[string]struct{}, len(fallback)+1)
	add := func(m string) {
		m = strings.TrimSpace(m)
		if m == "" {
			return
		}
		if _, ok := seen[m]; ok {
			return
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	add(preferred)
	for _, m := range fallback {
		add(m)
	}
	return out
}
