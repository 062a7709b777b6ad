package philemma

import (
	"reflect"
	"slices"
	"strings"
	"testing"
)

func FuzzAnalyze(f *testing.F) {
	seeds := []string{
		"pumunta", "nagbasa", "magbasahan", "Kumáin", "sumulat",
		"mikaon", "agdanum", "nag", "", "   ", "ñ", "́", "a-b-c",
	}
	for _, s := range seeds {
		f.Add(s, "auto")
	}
	f.Add("balay", "cebuano")
	f.Add("danum", "ilocano")

	a, err := New(mustDefaultRegistry(f), WithInfixStripping())
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, token, dialect string) {
		r1, err := a.Analyze(token, dialect)
		if err != nil {
			t.Fatalf("Analyze(%q, %q): %v", token, dialect, err)
		}
		r2, _ := a.Analyze(token, dialect)
		if !reflect.DeepEqual(r1, r2) {
			t.Fatalf("Analyze(%q) not deterministic:\n%+v\n%+v", token, r1, r2)
		}
		if !slices.Contains(r1.Candidates, r1.Lemma) {
			t.Errorf("Analyze(%q): lemma %q missing from candidates %q", token, r1.Lemma, r1.Candidates)
		}
		if r1.Affixes == nil {
			t.Errorf("Analyze(%q): nil affixes", token)
		}
		if r1.Irregular && (len(r1.Affixes) != 0 || r1.Rule != RuleIrregular) {
			t.Errorf("Analyze(%q): irregular result with affixes %v rule %q", token, r1.Affixes, r1.Rule)
		}
		if r1.Dialect == "" || r1.Dialect == Auto {
			t.Errorf("Analyze(%q, %q): unresolved dialect %q", token, dialect, r1.Dialect)
		}
	})
}

func FuzzParseLexicon(f *testing.F) {
	f.Add("dialect:tagalog\nroot:basa\nirreg:pumunta:punta\nprefix:nag\n")
	f.Add("! only a comment\n")
	f.Add("root\n")
	f.Add("infix:-um-\nsuffix:an\n")

	f.Fuzz(func(t *testing.T, src string) {
		lex, err := ParseLexicon(strings.NewReader(src), "fuzz")
		if err != nil {
			return
		}
		if d := lex.Dialect(); d == "" || d == Auto {
			t.Errorf("accepted lexicon with dialect %q", d)
		}
		for _, r := range lex.Roots() {
			if r == "" {
				t.Error("accepted an empty root")
			}
		}
	})
}

func mustDefaultRegistry(tb testing.TB) *Registry {
	tb.Helper()
	reg, err := DefaultRegistry()
	if err != nil {
		tb.Fatal(err)
	}
	return reg
}
