package redact

import (
	"regexp"
	"strings"
)

var (
	// Matches "Bearer <token>" (JWTs and opaque tokens).
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)

	// Common key=value formats that sometimes leak in error strings.
	apiKeyKVRe = regexp.MustCompile(`(?i)\b(api[_-]?key|token|secret)\b\s*[:=]\s*[^\s"'&]+`)

	// Webhook URLs authenticate by an unguessable path segment; net/http errors
	// echo the full URL ("Post \"https://host/webhook/<id>\": ...").
	webhookPathRe = regexp.MustCompile(`(?i)(/webhook(?:-test)?/)[^\s"'/?#]+`)
)

// Secrets removes obvious secret-bearing substrings from error/log strings.
func Secrets(s string) string {
	if s == "" {
		return ""
	}
	out := s
	out = bearerTokenRe.ReplaceAllString(out, "Bearer <redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "<redacted_kv>")
	out = webhookPathRe.ReplaceAllString(out, "${1}<redacted>")
	return strings.TrimSpace(out)
}

// Truncate redacts b and caps it at max bytes, flattening newlines.
func Truncate(b []byte, max int) string {
	if len(b) == 0 {
		return ""
	}
	cut := b
	if max > 0 && len(cut) > max {
		cut = cut[:max]
	}
	s := Secrets(string(cut))
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if max > 0 && len(b) > max {
		return s + "..."
	}
	return s
}
