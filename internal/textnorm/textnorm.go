// Package textnorm holds the small text folding helpers shared by the
// bulletin parser, the gazetteer and the normalizer.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining accents, so "Cantón SAN JOSÉ"
// folds to "canton san jose". The ñ survives as n.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Collapse trims s and replaces every whitespace run with one space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Words folds s and splits it into letter/digit words, dropping punctuation.
func Words(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
