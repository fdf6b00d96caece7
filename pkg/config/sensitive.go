package config

import "encoding/json"

const redacted = "[REDACTED]"

// SensitiveString holds a secret that must never reach logs or JSON output.
type SensitiveString string

// String returns a redacted form of the secret.
func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// Value returns the underlying secret.
func (s SensitiveString) Value() string {
	return string(s)
}

// MarshalJSON redacts the secret when serialized.
func (s SensitiveString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
