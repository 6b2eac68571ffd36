package utils

import (
	"strings"
	"unicode/utf8"
)

// TruncateText cuts text to at most max bytes, backing off to a rune
// boundary so the result stays valid UTF-8.
func TruncateText(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max] + "..."
}

// LastLines keeps the final n lines of text, trailing newline excluded.
func LastLines(text string, n int) string {
	text = strings.TrimRight(text, "\n")
	if n <= 0 || text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
