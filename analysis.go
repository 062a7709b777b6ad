package philemma

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PartOfSpeech represents the grammatical category of a lemma.
// The analyzer never infers it; a Tagger supplies it.
type PartOfSpeech string

const (
	POSNoun      PartOfSpeech = "noun"
	POSVerb      PartOfSpeech = "verb"
	POSAdjective PartOfSpeech = "adjective"
	POSUnknown   PartOfSpeech = "unknown"
)

// Tagger assigns a part of speech to a lemma. context holds the
// surrounding tokens of the sentence, or nil for single-token analysis.
type Tagger interface {
	Tag(lemma string, context []string) PartOfSpeech
}

// UnknownTagger is the stub Tagger used when none is configured.
type UnknownTagger struct{}

// Tag always returns POSUnknown.
func (UnknownTagger) Tag(string, []string) PartOfSpeech { return POSUnknown }

// AffixKind classifies an affix by its attachment position.
type AffixKind int

const (
	Prefix AffixKind = iota
	Infix
	Suffix
)

var affixKindNames = [...]string{
	Prefix: "prefix",
	Infix:  "infix",
	Suffix: "suffix",
}

// String returns "prefix", "infix" or "suffix".
func (k AffixKind) String() string {
	if int(k) >= 0 && int(k) < len(affixKindNames) {
		return affixKindNames[k]
	}
	return fmt.Sprintf("AffixKind(%d)", int(k))
}

// TaggedAffix is one affix removed from a token, with its position.
type TaggedAffix struct {
	Kind AffixKind
	Form string
}

// String renders the affix in hyphen notation: "nag-", "-um-", "-an".
func (a TaggedAffix) String() string {
	switch a.Kind {
	case Prefix:
		return a.Form + "-"
	case Infix:
		return "-" + a.Form + "-"
	default:
		return "-" + a.Form
	}
}

// MarshalJSON encodes the affix in hyphen notation (e.g. "nag-").
func (a TaggedAffix) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes hyphen notation back into a TaggedAffix.
func (a *TaggedAffix) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAffix(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAffix parses hyphen notation: "nag-" is a prefix, "-an" a suffix
// and "-um-" an infix.
func ParseAffix(s string) (TaggedAffix, error) {
	lead := strings.HasPrefix(s, "-")
	trail := strings.HasSuffix(s, "-")
	form := strings.Trim(s, "-")
	if form == "" {
		return TaggedAffix{}, fmt.Errorf("philemma: malformed affix %q", s)
	}
	switch {
	case lead && trail:
		return TaggedAffix{Kind: Infix, Form: form}, nil
	case trail:
		return TaggedAffix{Kind: Prefix, Form: form}, nil
	case lead:
		return TaggedAffix{Kind: Suffix, Form: form}, nil
	}
	return TaggedAffix{}, fmt.Errorf("philemma: affix %q has no hyphen", s)
}

// Rule identifiers for the two non-affixal resolution paths.
const (
	RuleIrregular = "irregular-lookup"
	RuleDirect    = "direct-lookup"
)

// AnalysisResult holds the analysis of a single token.
type AnalysisResult struct {
	// Token is the surface form that was analyzed.
	Token string `json:"token"`
	// Lemma is the chosen root; always an element of Candidates.
	Lemma string `json:"lemma"`
	// Affixes lists the affixes removed, in the order they were stripped.
	Affixes []TaggedAffix `json:"affixes"`
	// Candidates lists possible lemmas, deduplicated, best first.
	Candidates []string `json:"candidates"`
	// Irregular is set when the lemma came from the irregular-form table.
	Irregular bool `json:"irregular"`
	// Rule names the resolution path: RuleIrregular, RuleDirect or an
	// "affix:" identifier built from the stripped affixes.
	Rule    string       `json:"rule"`
	POS     PartOfSpeech `json:"pos"`
	Dialect Dialect      `json:"dialect"`
}

// affixRule builds the deterministic rule identifier for a set of
// stripped affixes, e.g. "affix:mag-,-an".
func affixRule(affixes []TaggedAffix) string {
	if len(affixes) == 0 {
		return RuleDirect
	}
	parts := make([]string, len(affixes))
	for i, a := range affixes {
		parts[i] = a.String()
	}
	return "affix:" + strings.Join(parts, ",")
}

// TextAnalysis holds the results for a whole text.
type TextAnalysis struct {
	Text    string  `json:"text"`
	Dialect Dialect `json:"dialect"`
	// Detection is set only when dialect detection ran.
	Detection *Detection       `json:"detection,omitempty"`
	Tokens    []string         `json:"tokens"`
	Results   []AnalysisResult `json:"results"`
}

// IrregularCount returns how many results came from the irregular table.
func (t *TextAnalysis) IrregularCount() int {
	n := 0
	for _, r := range t.Results {
		if r.Irregular {
			n++
		}
	}
	return n
}

// Lemmas returns the distinct lemmas in first-seen order.
func (t *TextAnalysis) Lemmas() []string {
	out := make([]string, 0, len(t.Results))
	for _, r := range t.Results {
		out = append(out, r.Lemma)
	}
	return unique(out)
}

// InflectionTable lists the surface forms a lexicon can derive from a root.
type InflectionTable struct {
	Root    string  `json:"root"`
	Dialect Dialect `json:"dialect"`
	// Cells maps an affix in hyphen notation to the form it produces.
	Cells map[string]string `json:"cells"`
	// Irregulars lists irregular surface forms whose lemma is Root.
	Irregulars []string `json:"irregulars,omitempty"`
}

// unique returns a deduplicated slice preserving order.
func unique(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
