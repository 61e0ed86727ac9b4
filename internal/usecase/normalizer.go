package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex pattern for performance
var whitespaceRunRegex = regexp.MustCompile(`\s+`)

// Normalize canonicalizes free text for matching: trims surrounding
// whitespace, decomposes accented characters and drops the combining marks
// (so "Azúcar" and "Azucar" come out identical), and collapses internal
// whitespace runs to single spaces. Case is preserved.
//
// Every matching step depends on this function; the same normalization is
// applied at write time and at match time.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, text); err == nil {
		text = stripped
	}

	return whitespaceRunRegex.ReplaceAllString(text, " ")
}

// NormalizeKey is the lowercase form of Normalize, used as the lookup key
// for entity indexes and exact-match comparisons.
func NormalizeKey(text string) string {
	return strings.ToLower(Normalize(text))
}
