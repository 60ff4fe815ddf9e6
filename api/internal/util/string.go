package util

import "unicode/utf8"

// Truncate cuts s to at most n bytes without splitting a rune and appends "…" when cut.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
