package utils

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
)

var plainText = bluemonday.StrictPolicy()

// StripTags removes any markup and returns trimmed plain text.
func StripTags(s string) string {
	// StrictPolicy escapes what it keeps; undo that so "C++ & Go" survives.
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}

// TagKey is the case-insensitive identity of a tag name.
func TagKey(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// RuneLen counts characters rather than bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
