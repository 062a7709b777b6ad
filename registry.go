package philemma

import "fmt"

// Registry maps dialects to their lexicons. It is built once and never
// mutated, so a single Registry can serve any number of goroutines.
type Registry struct {
	def      Dialect
	order    []Dialect
	lexicons map[Dialect]*Lexicon
}

// NewRegistry builds a Registry whose fallback is def. A lexicon
// registered twice for the same dialect replaces the earlier one but
// keeps its position. Registering without a lexicon for def is allowed;
// Validate reports it.
func NewRegistry(def Dialect, lexicons ...*Lexicon) *Registry {
	r := &Registry{
		def:      ParseDialect(string(def)),
		lexicons: make(map[Dialect]*Lexicon, len(lexicons)),
	}
	for _, lex := range lexicons {
		if lex == nil {
			continue
		}
		if _, ok := r.lexicons[lex.dialect]; !ok {
			r.order = append(r.order, lex.dialect)
		}
		r.lexicons[lex.dialect] = lex
	}
	return r
}

// Validate checks that the fallback lexicon exists.
func (r *Registry) Validate() error {
	if _, ok := r.lexicons[r.def]; !ok {
		return fmt.Errorf("%w: no lexicon for default dialect %q", ErrUnknownDialect, r.def)
	}
	return nil
}

// Default returns the fallback dialect.
func (r *Registry) Default() Dialect { return r.def }

// Dialects returns the registered dialects in registration order.
func (r *Registry) Dialects() []Dialect {
	return append([]Dialect(nil), r.order...)
}

// Lookup returns the lexicon registered for d, without fallback.
func (r *Registry) Lookup(d Dialect) (*Lexicon, bool) {
	lex, ok := r.lexicons[d]
	return lex, ok
}

// Resolve maps a dialect selector to a lexicon. Known dialects map to
// their own lexicon; "auto", unknown and empty selectors fall back to
// the default. It fails with ErrUnknownDialect only when the default
// has no lexicon.
func (r *Registry) Resolve(selector string) (*Lexicon, error) {
	d := ParseDialect(selector)
	if d != Auto {
		if lex, ok := r.lexicons[d]; ok {
			return lex, nil
		}
	}
	lex, ok := r.lexicons[r.def]
	if !ok {
		return nil, fmt.Errorf("%w: %q (no default lexicon)", ErrUnknownDialect, selector)
	}
	return lex, nil
}
