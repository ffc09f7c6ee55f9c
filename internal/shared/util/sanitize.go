package util

import (
	"strings"
	"unicode"
)

const maxFileNameRunes = 120

// SanitizeFileName turns free text into a safe download name. Path separators,
// control characters and quotes are replaced; an empty result falls back to def.
func SanitizeFileName(name, def string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\' || r == '"' || r == ':' || r == '*' || r == '?' || r == '<' || r == '>' || r == '|':
			b.WriteRune('_')
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ". ")
	out = strings.ReplaceAll(out, "..", "_")
	if out == "" {
		return def
	}
	if runes := []rune(out); len(runes) > maxFileNameRunes {
		out = string(runes[:maxFileNameRunes])
	}
	return out
}
