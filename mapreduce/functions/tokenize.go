// Package functions holds the word-count map and reduce functions.
package functions

import (
	"strings"
	"unicode"
)

// isSpace is unicode.IsSpace extended by the information separators
// U+001C..U+001F, which are word breaks in many text tools.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || ('\x1c' <= r && r <= '\x1f')
}

// Normalize lowercases line, deletes every character that is neither an
// ASCII lowercase letter nor whitespace, and collapses whitespace runs into
// single spaces. Digits, punctuation and non-ASCII letters are dropped.
func Normalize(line string) string {
	line = strings.ToLower(line)
	kept := strings.Map(func(r rune) rune {
		if ('a' <= r && r <= 'z') || isSpace(r) {
			return r
		}
		return -1
	}, line)
	return strings.Join(strings.FieldsFunc(kept, isSpace), " ")
}

// Tokenize returns the normalized words of line.
func Tokenize(line string) []string {
	return strings.Fields(Normalize(line))
}
