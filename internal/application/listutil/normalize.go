package listutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds free text into a grouping key: trimmed, lowercased,
// diacritics removed and internal whitespace collapsed to single spaces.
// "  Xangri-Lá " and "xangri-la" share the key "xangri-la".
// PRE: none
// POST: Normalize(Normalize(s)) == Normalize(s); whitespace-only input yields ""
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	// Transformers carry state, so a fresh chain is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(folded), " ")
}

// NormalizeValue normalizes an arbitrary record value.
// Nil and non-string values never fail: nil is blank, numbers and bools use their text form.
func NormalizeValue(v any) string {
	if v == nil {
		return ""
	}
	return Normalize(stringify(v))
}
