// Package philemma provides rule-based lemmatization of Philippine-language
// verbs (Tagalog, Cebuano, Ilocano and any dialect described by a lexicon
// file). A word is reduced to its root by an irregular-form lookup, then by
// stripping at most one prefix, one suffix and optionally one infix, and the
// resulting stem is checked against the dialect's root list.
//
// Lexicons are loaded once into an immutable Registry and injected into an
// Analyzer; all Analyzer methods are safe for concurrent use.
package philemma

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyInput is returned for blank text.
	ErrEmptyInput = errors.New("philemma: empty input")
	// ErrUnknownDialect is returned when a selector cannot be resolved
	// because the registry has no default lexicon.
	ErrUnknownDialect = errors.New("philemma: unknown dialect")
	// ErrUnknownRoot is returned by Inflections for unlisted roots.
	ErrUnknownRoot = errors.New("philemma: unknown root")
)

// Analyzer holds a lexicon registry and the analysis settings.
type Analyzer struct {
	registry *Registry
	seg      SegmentOptions
	detect   bool
	tagger   Tagger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithStrategy selects how competing affixes are chosen.
func WithStrategy(s MatchStrategy) Option {
	return func(a *Analyzer) { a.seg.Strategy = s }
}

// WithInfixStripping enables root-validated infix removal.
func WithInfixStripping() Option {
	return func(a *Analyzer) { a.seg.StripInfixes = true }
}

// WithDialectDetection makes AnalyzeText score every lexicon when the
// selector is "auto", instead of using the registry default.
func WithDialectDetection() Option {
	return func(a *Analyzer) { a.detect = true }
}

// WithTagger sets the part-of-speech collaborator.
func WithTagger(t Tagger) Option {
	return func(a *Analyzer) {
		if t != nil {
			a.tagger = t
		}
	}
}

// New returns an Analyzer over reg. It fails when reg has no lexicon for
// its default dialect.
func New(reg *Registry, opts ...Option) (*Analyzer, error) {
	if reg == nil {
		return nil, errors.New("philemma: nil registry")
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	a := &Analyzer{registry: reg, tagger: UnknownTagger{}}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Registry returns the analyzer's lexicon registry.
func (a *Analyzer) Registry() *Registry { return a.registry }

// SegmentOptions returns the segmentation settings in use.
func (a *Analyzer) SegmentOptions() SegmentOptions { return a.seg }

// Analyze lemmatizes a single word. The word is normalized with
// NormalizeToken first; the dialect selector is resolved as in
// Registry.Resolve.
func (a *Analyzer) Analyze(token, dialect string) (AnalysisResult, error) {
	lex, err := a.registry.Resolve(dialect)
	if err != nil {
		return AnalysisResult{}, err
	}
	return a.analyze(NormalizeToken(token), lex, nil), nil
}

// AnalyzeText tokenizes text and lemmatizes every token against one
// lexicon. Blank text fails with ErrEmptyInput before any token is
// analyzed.
func (a *Analyzer) AnalyzeText(text, dialect string) (*TextAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	lex, err := a.registry.Resolve(dialect)
	if err != nil {
		return nil, err
	}

	tokens := Tokenize(text)
	out := &TextAnalysis{Text: text, Tokens: tokens}

	if a.detect && ParseDialect(dialect) == Auto {
		det := Detect(tokens, a.registry, a.seg)
		out.Detection = &det
		if detected, ok := a.registry.Lookup(det.Dialect); ok {
			lex = detected
		}
	}
	out.Dialect = lex.dialect

	out.Results = make([]AnalysisResult, len(tokens))
	for i, tok := range tokens {
		out.Results[i] = a.analyze(tok, lex, tokens)
	}
	return out, nil
}

func (a *Analyzer) analyze(token string, lex *Lexicon, context []string) AnalysisResult {
	res := Resolve(token, lex, a.seg)
	res.POS = a.tagger.Tag(res.Lemma, context)
	if res.POS == "" {
		res.POS = POSUnknown
	}
	return res
}

// Inflections lists the forms the dialect's affixes derive from root.
func (a *Analyzer) Inflections(root, dialect string) (*InflectionTable, error) {
	lex, err := a.registry.Resolve(dialect)
	if err != nil {
		return nil, err
	}
	return lex.inflectionTable(NormalizeToken(root))
}
