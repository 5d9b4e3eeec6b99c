package process

import "strings"

// nbspReplacer folds non-breaking spaces into ordinary ones
var nbspReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ")

// CleanText folds non-breaking spaces, collapses whitespace runs to a single
// space and trims the result
func CleanText(s string) string {
	return strings.Join(strings.Fields(nbspReplacer.Replace(s)), " ")
}

// Truncate cuts s to at most n characters (runes). Spaces left dangling at the
// cut are dropped, so a truncated result can be shorter than n.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimRight(string(runes[:n]), " ")
}

// joinFirst joins up to n leading items with single spaces
func joinFirst(items []string, n int) string {
	if len(items) < n {
		n = len(items)
	}
	return strings.Join(items[:n], " ")
}
