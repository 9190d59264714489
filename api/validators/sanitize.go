package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CleanText trims s, drops control characters other than newline and tab,
// and cuts it to maxRunes runes. A non-positive maxRunes keeps the full text.
func CleanText(s string, maxRunes int) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, s)
	if maxRunes > 0 && utf8.RuneCountInString(s) > maxRunes {
		s = string([]rune(s)[:maxRunes])
	}
	return strings.TrimSpace(s)
}
