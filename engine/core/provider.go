package core

import "strings"

// ProviderName identifies an upstream vendor.
type ProviderName string

const (
	ProviderAnthropic  ProviderName = "anthropic"
	ProviderOpenAI     ProviderName = "openai"
	ProviderElevenLabs ProviderName = "elevenlabs"
	ProviderPolly      ProviderName = "polly"
)

// ParseProvider normalizes a provider tag. Unrecognized tags are returned as-is
// so callers can decide how to treat them.
func ParseProvider(s string) ProviderName {
	return ProviderName(strings.ToLower(strings.TrimSpace(s)))
}

func (p ProviderName) String() string {
	return string(p)
}

// KeyPrefix returns the prefix a well-formed API key for the provider carries,
// or "" when the vendor uses no fixed prefix.
func (p ProviderName) KeyPrefix() string {
	switch p {
	case ProviderAnthropic:
		return "sk-ant-"
	case ProviderOpenAI:
		return "sk-"
	default:
		return ""
	}
}
