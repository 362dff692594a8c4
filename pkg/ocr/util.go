package ocr

import "strings"

// Redact replaces every ASCII digit with 'X'.
func Redact(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return 'X'
		}
		return r
	}, s)
}

// Snippet returns at most max characters of s for logging, with digits
// redacted and whitespace collapsed.
func Snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > max {
		s = string(r[:max]) + "…"
	}
	return Redact(s)
}
