package philemma

import (
	"fmt"
	"sort"
)

// inflectionTable computes every form the lexicon's affix inventory can
// build from root, plus the irregular forms that resolve to it.
func (l *Lexicon) inflectionTable(root string) (*InflectionTable, error) {
	if !l.roots[root] {
		return nil, fmt.Errorf("%w: %q in %s", ErrUnknownRoot, root, l.dialect)
	}

	table := &InflectionTable{
		Root:    root,
		Dialect: l.dialect,
		Cells:   make(map[string]string),
	}

	for _, p := range l.affixes.Prefixes {
		table.Cells[TaggedAffix{Kind: Prefix, Form: p}.String()] = p + root
	}
	for _, s := range l.affixes.Suffixes {
		table.Cells[TaggedAffix{Kind: Suffix, Form: s}.String()] = root + s
	}
	for _, in := range l.affixes.Infixes {
		if form, ok := insertInfix(root, in); ok {
			table.Cells[TaggedAffix{Kind: Infix, Form: in}.String()] = form
		}
	}

	for form, r := range l.irregulars {
		if r == root {
			table.Irregulars = append(table.Irregulars, form)
		}
	}
	sort.Strings(table.Irregulars)

	return table, nil
}
