package gateway

import (
	"fmt"
	"strings"
)

// UsableKey reports whether key is present and carries the vendor prefix.
// An empty prefix accepts any non-blank key.
func UsableKey(key, prefix string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	return strings.HasPrefix(key, prefix)
}

// KeyDiagnostic describes a credential without revealing it.
type KeyDiagnostic struct {
	Source    string `json:"source"`
	Length    int    `json:"length"`
	Prefix    string `json:"prefix,omitempty"`
	HasPrefix bool   `json:"hasPrefix"`
}

// DescribeKey builds the diagnostic reported when a vendor rejects a key.
func DescribeKey(source, key, prefix string) KeyDiagnostic {
	if source == "" {
		source = "unknown"
	}
	key = strings.TrimSpace(key)
	return KeyDiagnostic{
		Source:    source,
		Length:    len(key),
		Prefix:    prefix,
		HasPrefix: prefix != "" && strings.HasPrefix(key, prefix),
	}
}

func (d KeyDiagnostic) String() string {
	if d.Prefix == "" {
		return fmt.Sprintf("key source %s, length %d", d.Source, d.Length)
	}
	return fmt.Sprintf("key source %s, length %d, %s prefix present: %t", d.Source, d.Length, d.Prefix, d.HasPrefix)
}
