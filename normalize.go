package philemma

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// punctReplacer removes the punctuation the batch driver strips
// before splitting: period, comma, exclamation and question marks.
var punctReplacer = strings.NewReplacer(
	".", "",
	",", "",
	"!", "",
	"?", "",
)

// stressMarks matches the combining accents written Filipino uses to
// mark stress (kumáin, basà, masayâ). The tilde of ñ is kept.
var stressMarks = runes.Predicate(func(r rune) bool {
	return r == '\u0300' || r == '\u0301' || r == '\u0302'
})

// fold lowercases s, composes it to NFC and drops stress accents.
// Casers and transform chains carry state, so both are built per call.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(stressMarks), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = norm.NFC.String(s)
	}
	return cases.Lower(language.Und).String(out)
}

// NormalizeToken returns the lookup key for a single word: trimmed,
// lowercased, NFC-composed, stress accents removed.
func NormalizeToken(s string) string {
	return fold(strings.TrimSpace(s))
}

// Tokenize splits free text into analyzable tokens. The text is
// lowercased, stripped of the characters . , ! ? and of stress accents,
// then split on runs of whitespace.
func Tokenize(text string) []string {
	return strings.Fields(punctReplacer.Replace(fold(text)))
}
