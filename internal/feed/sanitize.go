package feed

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxTextLen = 200

var (
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// cleanText trims s, drops control characters, collapses whitespace runs and caps the
// length at maxTextLen runes.
func cleanText(s string) string {
	s = spaceRuns.ReplaceAllString(s, " ")
	s = controlChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxTextLen {
		s = string([]rune(s)[:maxTextLen])
	}
	return s
}

// cleanKey is cleanText folded to lower case, used for market and selection text.
func cleanKey(s string) string {
	return strings.ToLower(cleanText(s))
}
