package util

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// NormalizeQuery folds a search query to the form used for cache keys and
// search URLs: trimmed, single-spaced, lower case.
func NormalizeQuery(q string) string {
	return strings.ToLower(CleanText(q))
}

// ContainsAny reports whether lower(s) contains any of the lower-case needles.
func ContainsAny(s string, needles ...string) bool {
	ls := strings.ToLower(s)
	for _, n := range needles {
		if n != "" && strings.Contains(ls, n) {
			return true
		}
	}
	return false
}

// Truncate shortens s to at most n runes for log lines.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
