package philemma

import (
	"fmt"
	"sort"
	"strings"
)

// Dialect identifies a regional language variant with its own lexicon.
type Dialect string

const (
	Tagalog Dialect = "tagalog"
	Cebuano Dialect = "cebuano"
	Ilocano Dialect = "ilocano"

	// Auto asks the registry to pick a dialect. It is never stored.
	Auto Dialect = "auto"
)

// ParseDialect normalizes a dialect selector ("Tagalog", " ilocano ").
func ParseDialect(s string) Dialect {
	return Dialect(strings.ToLower(strings.TrimSpace(s)))
}

// AffixInventory lists a dialect's affixes. Slice order is matching
// priority, not alphabetical order.
type AffixInventory struct {
	Prefixes []string
	Suffixes []string
	Infixes  []string
}

func (inv AffixInventory) clone() AffixInventory {
	return AffixInventory{
		Prefixes: append([]string(nil), inv.Prefixes...),
		Suffixes: append([]string(nil), inv.Suffixes...),
		Infixes:  append([]string(nil), inv.Infixes...),
	}
}

// Lexicon holds the roots, irregular forms and affixes of one dialect.
// A Lexicon is immutable once built and safe for concurrent use.
type Lexicon struct {
	dialect Dialect
	// roots is the set of bare root forms.
	roots map[string]bool
	// rootOrder keeps roots in declaration order for listing.
	rootOrder []string
	// irregulars maps surface form → root.
	irregulars map[string]string
	affixes    AffixInventory
}

// NewLexicon builds a Lexicon. Every entry is normalized with
// NormalizeToken; empty entries and duplicates are rejected.
func NewLexicon(d Dialect, roots []string, irregulars map[string]string, affixes AffixInventory) (*Lexicon, error) {
	d = ParseDialect(string(d))
	if d == "" || d == Auto {
		return nil, fmt.Errorf("philemma: invalid lexicon dialect %q", d)
	}
	lex := &Lexicon{
		dialect:    d,
		roots:      make(map[string]bool, len(roots)),
		irregulars: make(map[string]string, len(irregulars)),
	}

	for _, r := range roots {
		key := NormalizeToken(r)
		if key == "" {
			return nil, fmt.Errorf("philemma: %s: empty root", d)
		}
		if lex.roots[key] {
			return nil, fmt.Errorf("philemma: %s: duplicate root %q", d, key)
		}
		lex.roots[key] = true
		lex.rootOrder = append(lex.rootOrder, key)
	}

	for form, root := range irregulars {
		key, lemma := NormalizeToken(form), NormalizeToken(root)
		if key == "" || lemma == "" {
			return nil, fmt.Errorf("philemma: %s: empty irregular entry %q:%q", d, form, root)
		}
		if _, dup := lex.irregulars[key]; dup {
			return nil, fmt.Errorf("philemma: %s: duplicate irregular form %q", d, key)
		}
		lex.irregulars[key] = lemma
	}

	var err error
	if lex.affixes.Prefixes, err = normalizeAffixes(d, "prefix", affixes.Prefixes); err != nil {
		return nil, err
	}
	if lex.affixes.Suffixes, err = normalizeAffixes(d, "suffix", affixes.Suffixes); err != nil {
		return nil, err
	}
	if lex.affixes.Infixes, err = normalizeAffixes(d, "infix", affixes.Infixes); err != nil {
		return nil, err
	}
	return lex, nil
}

func normalizeAffixes(d Dialect, kind string, in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		key := NormalizeToken(strings.Trim(a, "-"))
		if key == "" {
			return nil, fmt.Errorf("philemma: %s: empty %s", d, kind)
		}
		if seen[key] {
			return nil, fmt.Errorf("philemma: %s: duplicate %s %q", d, kind, key)
		}
		seen[key] = true
		out = append(out, key)
	}
	return out, nil
}

// Dialect returns the dialect this lexicon describes.
func (l *Lexicon) Dialect() Dialect { return l.dialect }

// IsRoot reports whether r is a listed root.
func (l *Lexicon) IsRoot(r string) bool { return l.roots[r] }

// Irregular returns the root of an irregular surface form.
func (l *Lexicon) Irregular(form string) (string, bool) {
	root, ok := l.irregulars[form]
	return root, ok
}

// Roots returns the roots in declaration order.
func (l *Lexicon) Roots() []string {
	return append([]string(nil), l.rootOrder...)
}

// Irregulars returns a copy of the irregular-form table.
func (l *Lexicon) Irregulars() map[string]string {
	out := make(map[string]string, len(l.irregulars))
	for k, v := range l.irregulars {
		out[k] = v
	}
	return out
}

// Affixes returns a copy of the affix inventory.
func (l *Lexicon) Affixes() AffixInventory {
	return l.affixes.clone()
}

// EntryKind selects which part of a lexicon Entries lists.
type EntryKind string

const (
	EntryRoots      EntryKind = "roots"
	EntryIrregulars EntryKind = "irregulars"
	EntryAffixes    EntryKind = "affixes"
)

// Entry is one listed lexicon item.
type Entry struct {
	// Form is the root, the irregular surface form, or the affix in
	// hyphen notation.
	Form string `json:"form"`
	// Lemma is set for irregular forms.
	Lemma string `json:"lemma,omitempty"`
	// Kind is "root", "irregular", "prefix", "infix" or "suffix".
	Kind    string  `json:"kind"`
	Dialect Dialect `json:"dialect"`
}

// Entries lists the entries of one kind whose text contains query
// (case-insensitive). Results are sorted by form. An unknown kind
// yields nil.
func (l *Lexicon) Entries(kind EntryKind, query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	match := func(fields ...string) bool {
		if q == "" {
			return true
		}
		for _, f := range fields {
			if strings.Contains(f, q) {
				return true
			}
		}
		return false
	}

	var out []Entry
	switch kind {
	case EntryRoots:
		for _, r := range l.rootOrder {
			if match(r) {
				out = append(out, Entry{Form: r, Kind: "root", Dialect: l.dialect})
			}
		}
	case EntryIrregulars:
		for form, root := range l.irregulars {
			if match(form, root) {
				out = append(out, Entry{Form: form, Lemma: root, Kind: "irregular", Dialect: l.dialect})
			}
		}
	case EntryAffixes:
		add := func(k AffixKind, forms []string) {
			for _, f := range forms {
				a := TaggedAffix{Kind: k, Form: f}
				if match(f, a.String()) {
					out = append(out, Entry{Form: a.String(), Kind: k.String(), Dialect: l.dialect})
				}
			}
		}
		add(Prefix, l.affixes.Prefixes)
		add(Infix, l.affixes.Infixes)
		add(Suffix, l.affixes.Suffixes)
	default:
		return nil
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Form != out[j].Form {
			return out[i].Form < out[j].Form
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
