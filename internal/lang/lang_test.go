package lang

import (
	"errors"
	"testing"
)

func TestParseAliases(t *testing.T) {
	cases := map[string]Language{
		"C++":     CPP,
		" py ":    Python,
		"rs":      Rust,
		"JSX":     JavaScriptReact,
		"golang":  Go,
		"c":       C,
		"cobol":   Language("cobol"),
		"":        "",
		"Python3": Python,
	}
	for in, want := range cases {
		if got := Parse(in); got != want {
			t.Fatalf("Parse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRulesForUnsupported(t *testing.T) {
	_, err := Default().RulesFor("cobol")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("errors.Is(err, ErrUnsupportedLanguage) = false: %v", err)
	}
	var ue *UnsupportedLanguageError
	if !errors.As(err, &ue) || ue.Name != "cobol" {
		t.Fatalf("unexpected error value: %#v", err)
	}
}

func TestRulesForResolvesAlias(t *testing.T) {
	r, err := Default().RulesFor("c++")
	if err != nil {
		t.Fatalf("RulesFor: %v", err)
	}
	if r.Name != CPP {
		t.Fatalf("name = %q", r.Name)
	}
	if len(r.RawStrings) == 0 {
		t.Fatalf("cpp should carry raw strings")
	}
}

func TestBuiltinRulesAreValid(t *testing.T) {
	reg := Default()
	langs := reg.Languages()
	if len(langs) < 20 {
		t.Fatalf("expected a broad builtin set, got %d", len(langs))
	}
	for i := 1; i < len(langs); i++ {
		if langs[i-1] >= langs[i] {
			t.Fatalf("Languages() not sorted: %v", langs)
		}
	}
	for _, l := range langs {
		r, err := reg.RulesFor(l)
		if err != nil {
			t.Fatalf("RulesFor(%s): %v", l, err)
		}
		if err := r.Validate(); err != nil {
			t.Fatalf("Validate(%s): %v", l, err)
		}
		if r.Fingerprint() == "" {
			t.Fatalf("%s: empty fingerprint", l)
		}
	}
}

func TestOpenersLongestFirst(t *testing.T) {
	r, err := Default().RulesFor(Python)
	if err != nil {
		t.Fatal(err)
	}
	ops := r.Openers()
	if len(ops) == 0 {
		t.Fatalf("no openers")
	}
	pos := make(map[string]int, len(ops))
	for i, op := range ops {
		pos[op.Token] = i
	}
	if pos[`"""`] > pos[`"`] || pos[`rf"""`] > pos[`f"`] {
		t.Fatalf("triple quotes must precede single quotes: %v", pos)
	}
	for i := 1; i < len(ops); i++ {
		if len(ops[i-1].Token) < len(ops[i].Token) {
			t.Fatalf("openers out of order at %d: %q before %q", i, ops[i-1].Token, ops[i].Token)
		}
	}

	lua, _ := Default().RulesFor(Lua)
	if got := lua.Openers()[0]; got.Kind != OpenBlockComment || got.Token != "--[[" {
		t.Fatalf("lua first opener = %+v", got)
	}
}

func TestNewRegistryRejectsInvalidRule(t *testing.T) {
	_, err := NewRegistry(Rule{Name: "bad", BlockComments: []BlockComment{{Start: "(*"}}})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	_, err = NewRegistry(Rule{Name: "bad", RawStrings: []RawString{{Prefixes: []string{"q"}, Key: "dots", Close: "'"}}})
	if err == nil {
		t.Fatalf("expected key class error")
	}
}

func TestExtendKeepsBaseAndAddsCustom(t *testing.T) {
	custom := Rule{
		Name:          "ocaml",
		BlockComments: []BlockComment{{Start: "(*", End: "*)", Nestable: true}},
		Strings:       []StringDelim{{Open: `"`}},
	}
	reg, err := Default().Extend(custom)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if !reg.Supports("ocaml") || !reg.Supports(C) {
		t.Fatalf("extended registry missing languages: %v", reg.Languages())
	}
	if Default().Supports("ocaml") {
		t.Fatalf("Extend must not mutate the default registry")
	}
}

func TestRegistryDoesNotAliasCallerSlices(t *testing.T) {
	comments := []string{"%"}
	reg, err := NewRegistry(Rule{Name: "tex", LineComments: comments})
	if err != nil {
		t.Fatal(err)
	}
	comments[0] = "#"
	r, _ := reg.RulesFor("tex")
	if r.LineComments[0] != "%" {
		t.Fatalf("registry rule changed after caller mutation: %q", r.LineComments[0])
	}
}

func TestIsStructural(t *testing.T) {
	r, _ := Default().RulesFor(C)
	if !r.IsStructural('}') || r.IsStructural(';') {
		t.Fatalf("unexpected structural set %q", r.Structural)
	}
	rs, _ := Default().RulesFor(Rust)
	for _, ch := range "{}()" {
		if !rs.IsStructural(ch) {
			t.Fatalf("rust: %q should be structural", ch)
		}
	}
	py, _ := Default().RulesFor(Python)
	if py.IsStructural('}') {
		t.Fatalf("python has no structural characters")
	}
}
