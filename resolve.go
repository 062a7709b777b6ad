package philemma

// Resolve analyzes a single normalized token against lex.
//
// Irregular forms short-circuit: the stored root is the lemma and no
// affix is reported. Otherwise the token is segmented; the stem is the
// lemma even when it is not a listed root, in which case the raw token
// is offered as a second candidate.
//
// The result's POS is left empty for the caller to fill.
func Resolve(token string, lex *Lexicon, opts SegmentOptions) AnalysisResult {
	if root, ok := lex.irregulars[token]; ok {
		return AnalysisResult{
			Token:      token,
			Lemma:      root,
			Affixes:    []TaggedAffix{},
			Candidates: []string{root},
			Irregular:  true,
			Rule:       RuleIrregular,
			Dialect:    lex.dialect,
		}
	}

	seg := Segment(token, lex, opts)
	candidates := []string{seg.Stem}
	if !lex.IsRoot(seg.Stem) {
		candidates = unique(append(candidates, token))
	}
	affixes := seg.Affixes
	if affixes == nil {
		affixes = []TaggedAffix{}
	}
	return AnalysisResult{
		Token:      token,
		Lemma:      seg.Stem,
		Affixes:    affixes,
		Candidates: candidates,
		Rule:       affixRule(affixes),
		Dialect:    lex.dialect,
	}
}
