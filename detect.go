package philemma

import (
	"cmp"
	"slices"
)

// Scoring weights for dialect detection. An irregular form is the
// strongest evidence, a root match next, a bare affix match the weakest.
const (
	irregularWeight = 3.0
	rootWeight      = 2.0
	affixWeight     = 1.0
)

// DialectScore is one dialect's share of the detection evidence.
type DialectScore struct {
	Dialect    Dialect `json:"dialect"`
	Confidence float64 `json:"confidence"`
}

// Detection is the outcome of dialect detection.
//
// Confidence is sum-normalized over all registered dialects, so it
// reflects relative strength within this input, not a probability.
type Detection struct {
	Dialect    Dialect        `json:"dialect"`
	Confidence float64        `json:"confidence"`
	Scores     []DialectScore `json:"scores"`
}

// Detect scores every lexicon in reg against tokens and returns the
// dialects ranked by descending confidence, ties in registration order.
// When no lexicon recognizes anything the registry default is returned
// with zero confidence.
func Detect(tokens []string, reg *Registry, opts SegmentOptions) Detection {
	raw := make([]float64, len(reg.order))
	total := 0.0
	for i, d := range reg.order {
		lex := reg.lexicons[d]
		for _, tok := range tokens {
			raw[i] += scoreToken(tok, lex, opts)
		}
		total += raw[i]
	}

	scores := make([]DialectScore, len(reg.order))
	for i, d := range reg.order {
		scores[i] = DialectScore{Dialect: d}
		if total > 0 {
			scores[i].Confidence = raw[i] / total
		}
	}
	if total == 0 {
		return Detection{Dialect: reg.def, Scores: scores}
	}

	slices.SortStableFunc(scores, func(a, b DialectScore) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return Detection{
		Dialect:    scores[0].Dialect,
		Confidence: scores[0].Confidence,
		Scores:     scores,
	}
}

func scoreToken(tok string, lex *Lexicon, opts SegmentOptions) float64 {
	if _, ok := lex.irregulars[tok]; ok {
		return irregularWeight
	}
	if lex.IsRoot(tok) {
		return rootWeight
	}
	seg := Segment(tok, lex, opts)
	if seg.Stem == "" {
		return 0
	}
	score := affixWeight * float64(len(seg.Affixes))
	if len(seg.Affixes) > 0 && lex.IsRoot(seg.Stem) {
		score += rootWeight
	}
	return score
}
