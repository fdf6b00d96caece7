package core

import (
	"regexp"
	"strings"
)

// Precompiled patterns for secret shapes that show up in vendor error bodies.
var (
	bearerTokenRe = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9\-\._~\+\/]+=*`)
	kvSecretRe    = regexp.MustCompile(
		`(?i)(x-api-key|xi-api-key|api[_-]?key|token|secret|password|access_token)\s*[:=]\s*["']?[^"'\s]+["']?`,
	)
	genericKeyRe = regexp.MustCompile(`\b(sk-ant-[A-Za-z0-9_\-]{8,}|sk-[A-Za-z0-9_\-]{16,})\b`)
	awsKeyRe     = regexp.MustCompile(`\b(AKIA[A-Z0-9]{16})\b`)
	connectionRe = regexp.MustCompile(`(?i)((redis|rediss|https?)://)[^@\s]+@[^\s]+`)
)

// RedactString trims, truncates, and scrubs common secret patterns.
func RedactString(s string) string {
	const maxLen = 512
	s = strings.TrimSpace(s)
	s = awsKeyRe.ReplaceAllString(s, "[AWS_KEY_REDACTED]")
	s = connectionRe.ReplaceAllString(s, "$1[REDACTED]")
	s = bearerTokenRe.ReplaceAllString(s, "$1[REDACTED]")
	s = kvSecretRe.ReplaceAllString(s, "$1=[REDACTED]")
	s = genericKeyRe.ReplaceAllString(s, "[REDACTED]")
	if len(s) > maxLen {
		s = s[:maxLen] + "…"
	}
	return s
}

// RedactError applies RedactString to an error, returning an empty string when nil.
func RedactError(err error) string {
	if err == nil {
		return ""
	}
	return RedactString(err.Error())
}
