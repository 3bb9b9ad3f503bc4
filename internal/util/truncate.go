package util

import "strings"

// TruncateAtWord cuts s to at most maxLen characters at a whitespace boundary
// and appends an ellipsis when anything was dropped. The word boundary is only
// honoured when the last space falls past 80% of the budget; a pathological
// run of non-space characters is hard-cut instead of keeping an oversized
// fragment.
func TruncateAtWord(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > maxLen*8/10 {
		return cut[:idx] + "..."
	}
	return cut + "..."
}

// Snippet trims, sanitizes and rune-truncates s for display or excerpts.
func Snippet(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 420
	}
	s = strings.Join(strings.Fields(SanitizeText(s)), " ")
	runes := []rune(s)
	if len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes]))
	}
	return s
}
