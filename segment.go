package philemma

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MatchStrategy decides which affix wins when several match.
type MatchStrategy int

const (
	// FirstMatch takes the first matching affix in declaration order.
	FirstMatch MatchStrategy = iota
	// LongestMatch takes the longest matching affix; declaration order
	// breaks ties.
	LongestMatch
)

// String returns "first-match" or "longest-match".
func (s MatchStrategy) String() string {
	switch s {
	case FirstMatch:
		return "first-match"
	case LongestMatch:
		return "longest-match"
	}
	return fmt.Sprintf("MatchStrategy(%d)", int(s))
}

// ParseMatchStrategy parses "first-match" or "longest-match".
// The empty string selects FirstMatch.
func ParseMatchStrategy(s string) (MatchStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first", "first-match":
		return FirstMatch, nil
	case "longest", "longest-match":
		return LongestMatch, nil
	}
	return FirstMatch, fmt.Errorf("philemma: unknown match strategy %q", s)
}

// SegmentOptions configures Segment.
type SegmentOptions struct {
	Strategy MatchStrategy
	// StripInfixes enables the infix pass: an infix found right after
	// the stem's first consonant is removed when what remains is a
	// listed root (sumulat → sulat).
	StripInfixes bool
}

// Segmentation is the result of affix stripping.
type Segmentation struct {
	Stem string
	// Affixes lists the removed affixes in word order.
	Affixes []TaggedAffix
}

// Segment strips at most one prefix, then at most one suffix from token,
// and, when enabled, at most one infix. Stripping is literal: a stem may
// end up empty, and no affix is ever applied twice.
func Segment(token string, lex *Lexicon, opts SegmentOptions) Segmentation {
	stem := token
	var prefix, infix, suffix string

	if p, ok := pickAffix(lex.affixes.Prefixes, opts.Strategy, func(a string) bool {
		return strings.HasPrefix(stem, a)
	}); ok {
		prefix = p
		stem = stem[len(p):]
	}

	if s, ok := pickAffix(lex.affixes.Suffixes, opts.Strategy, func(a string) bool {
		return strings.HasSuffix(stem, a)
	}); ok {
		suffix = s
		stem = stem[:len(stem)-len(s)]
	}

	if opts.StripInfixes && !lex.IsRoot(stem) {
		if in, ok := pickAffix(lex.affixes.Infixes, opts.Strategy, func(a string) bool {
			return lex.IsRoot(removeInfix(stem, a))
		}); ok {
			infix = in
			stem = removeInfix(stem, in)
		}
	}

	seg := Segmentation{Stem: stem}
	if prefix != "" {
		seg.Affixes = append(seg.Affixes, TaggedAffix{Kind: Prefix, Form: prefix})
	}
	if infix != "" {
		seg.Affixes = append(seg.Affixes, TaggedAffix{Kind: Infix, Form: infix})
	}
	if suffix != "" {
		seg.Affixes = append(seg.Affixes, TaggedAffix{Kind: Suffix, Form: suffix})
	}
	return seg
}

// pickAffix returns the affix chosen by strategy among those for which
// match holds.
func pickAffix(affixes []string, strategy MatchStrategy, match func(string) bool) (string, bool) {
	best, found := "", false
	for _, a := range affixes {
		if !match(a) {
			continue
		}
		if strategy != LongestMatch {
			return a, true
		}
		if !found || len(a) > len(best) {
			best, found = a, true
		}
	}
	return best, found
}

// removeInfix deletes infix when it directly follows the first rune of
// stem and that rune is a consonant. It returns "" when the infix is
// not there, which is never a root.
func removeInfix(stem, infix string) string {
	r, size := utf8.DecodeRuneInString(stem)
	if size == 0 || isVowel(r) {
		return ""
	}
	if !strings.HasPrefix(stem[size:], infix) {
		return ""
	}
	return stem[:size] + stem[size+len(infix):]
}

// insertInfix is the inverse of removeInfix. It reports false for
// vowel-initial roots, which take such affixes as prefixes instead.
func insertInfix(root, infix string) (string, bool) {
	r, size := utf8.DecodeRuneInString(root)
	if size == 0 || isVowel(r) {
		return "", false
	}
	return root[:size] + infix + root[size:], true
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
