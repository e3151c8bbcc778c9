package scan

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/phyten/sigloc/internal/lang"
	"github.com/phyten/sigloc/internal/model"
)

func mustRule(t *testing.T, l lang.Language) *lang.Rule {
	t.Helper()
	r, err := lang.Default().RulesFor(l)
	if err != nil {
		t.Fatalf("RulesFor(%s): %v", l, err)
	}
	return r
}

func TestMeaningfulLines(t *testing.T) {
	cases := []struct {
		name string
		lang lang.Language
		src  string
		want []int
	}{
		{"c fixture", lang.C, "\n        int xyz() {\n            auto x = 10;\n        }\n        ", []int{1, 2, 3}},
		{"only line comment", lang.C, "// only a comment\n", []int{}},
		{"indented line comment", lang.C, "   \t// only a comment\n", []int{}},
		{"block comment then code", lang.C, "/* start\nstill comment\nend */ code();\n", []int{2}},
		{"unterminated string", lang.C, "x();\n\"abc", []int{0, 1}},
		{"unterminated block comment", lang.C, "x();\n/* open\nstill", []int{0}},
		{"blank only", lang.C, "\n\n  \t\n", []int{}},
		{"empty", lang.C, "", []int{}},
		{"lone brace", lang.C, "}\n", []int{0}},
		{"code before comment", lang.C, "int a; // trailing\n", []int{0}},
		{"comment marker in string", lang.C, "char *s = \"// not\";\n", []int{0}},
		{"continued line comment", lang.C, "// a \\\nstill comment\nint x;\n", []int{2}},
		{"escaped newline in string", lang.C, "char *s = \"a\\\n// not a comment\";\n", []int{0, 1}},
		{"single-line string recovers", lang.C, "x = \"abc\n// c\n", []int{0}},
		{"escaped quote", lang.C, "s = \"a\\\"b // x\";\n// c\n", []int{0}},
		{"char literal quote", lang.C, "c = '\"';\n// c\n", []int{0}},
		{"crlf and lone cr", lang.C, "a\r\n// c\rb\n", []int{0, 2}},
		{"unicode whitespace", lang.C, "\u3000\u00a0\n", []int{}},
		{"byte order mark", lang.C, "\uFEFF// c\nx\n", []int{1}},
		{"rust nested comment", lang.Rust, "/* a /* b */ still */ fn main() {}\n", []int{0}},
		{"rust nested multi-line", lang.Rust, "/* a /* b */\nstill */\nfn x() {}", []int{2}},
		{"rust raw string", lang.Rust, "let s = r#\"\n// inside \"\n\"#;\n// c\n", []int{0, 1, 2}},
		{"rust lifetime", lang.Rust, "fn f<'a>(x: &'a str) {}\n// c\n", []int{0}},
		{"rust char literal", lang.Rust, "let q = '\"';\n// c\n", []int{0}},
		{"rust multi-line string", lang.Rust, "let s = \"a\n// in string\n\";\n", []int{0, 1, 2}},
		{"python comments", lang.Python, "x = 1  # c\n# only\n", []int{0}},
		{"python docstring", lang.Python, "\"\"\"\ndoc\n\n\"\"\"\n", []int{0, 1, 3}},
		{"python hash in string", lang.Python, "s = '#'\n  # c\n", []int{0}},
		{"whitespace line in multi-line string", lang.Python, "s = \"\"\"\n   \nx\"\"\"\n", []int{0, 2}},
		{"ruby begin end", lang.Ruby, "=begin\nx = 1\n=end\nputs 1\n", []int{3}},
		{"ruby begin mid-line", lang.Ruby, "x =begin\ny\n", []int{0, 1}},
		{"cpp raw string", lang.CPP, "auto s = R\"x(\n// in )\" still\n)x\";\n// c\n", []int{0, 1, 2}},
		{"lua long string", lang.Lua, "s = [==[\n-- in\n]==]\n-- c\n", []int{0, 1, 2}},
		{"lua block comment", lang.Lua, "--[[ a\nb ]]\nprint(1)\n", []int{2}},
		{"haskell nested", lang.Haskell, "{- a {- b -} c -}\nmain = 1\n", []int{1}},
		{"go raw string", lang.Go, "s := `a\\`\n// c\n", []int{0}},
		{"sql", lang.SQL, "-- c\nSELECT 'a--b' FROM t; -- c\n", []int{1}},
		{"html", lang.HTML, "<!-- a\nb -->\n<p>x</p>\n", []int{2}},
		{"csharp verbatim", lang.CSharp, "var p = @\"C:\\\n// x\";\n", []int{0, 1}},
		{"jsx html comment", lang.JavaScriptReact, "<!-- a -->\nconst x = 1;\n", []int{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MeaningfulLines(mustRule(t, tc.lang), tc.src)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("MeaningfulLines(%q) = %v, want %v", tc.src, got, tc.want)
			}
		})
	}
}

func TestClassifyKinds(t *testing.T) {
	src := "int a;\n\n// c\n/*\n\n*/ }\n"
	got := Classify(mustRule(t, lang.C), src, PolicyCode)
	want := []model.LineRecord{
		{Index: 0, Kind: model.LineCode},
		{Index: 1, Kind: model.LineBlank},
		{Index: 2, Kind: model.LineComment},
		{Index: 3, Kind: model.LineComment},
		{Index: 4, Kind: model.LineBlank},
		{Index: 5, Kind: model.LineCode},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Classify = %+v\nwant %+v", got, want)
	}
}

func TestClassifyLineCount(t *testing.T) {
	r := mustRule(t, lang.C)
	cases := map[string]int{
		"":       0,
		"a":      1,
		"a\n":    1,
		"a\n\n":  2,
		"\n":     1,
		"a\r\nb": 2,
		"a\rb\r": 2,
	}
	for src, want := range cases {
		if got := len(Classify(r, src, PolicyCode)); got != want {
			t.Fatalf("len(Classify(%q)) = %d, want %d", src, got, want)
		}
	}
}

func TestIdempotent(t *testing.T) {
	r := mustRule(t, lang.Rust)
	src := "/* a\n*/ fn main() {\n  let s = r#\"x\n\"#; // c\n}\n"
	first := MeaningfulLines(r, src)
	second := MeaningfulLines(r, src)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %v vs %v", first, second)
	}
}

func TestPlainCodeMatchesNonBlankLines(t *testing.T) {
	r := mustRule(t, lang.C)
	rng := rand.New(rand.NewSource(7))
	alphabet := []byte("abcxyz09;=+() \t")
	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(12)
		lines := make([]string, n)
		var want []int
		for i := range lines {
			var b strings.Builder
			for j := rng.Intn(8); j > 0; j-- {
				b.WriteByte(alphabet[rng.Intn(len(alphabet))])
			}
			lines[i] = b.String()
			if strings.TrimSpace(lines[i]) != "" {
				want = append(want, i)
			}
		}
		src := strings.Join(lines, "\n")
		got := MeaningfulLines(r, src)
		if len(got) == 0 && len(want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("src %q: got %v, want %v", src, got, want)
		}
	}
}

func TestStrictPolicy(t *testing.T) {
	cases := []struct {
		name string
		lang lang.Language
		src  string
		want []int
	}{
		{"lone braces dropped", lang.C, "int f() {\n}\n  {  }\n", []int{0}},
		{"docstring dropped", lang.Python, "def f():\n    \"\"\"doc\n    more\"\"\"\n    pass\n", []int{0, 3}},
		{"string-only line dropped", lang.Rust, "let s = \"a\n b\n\";\n", []int{0, 2}},
		{"python braces are code", lang.Python, "{}\n", []int{0}},
		{"rust lone parens dropped", lang.Rust, "foo(\n    a,\n)\n}\n", []int{0, 1}},
		{"rust open paren dropped", lang.Rust, "(\n    x\n", []int{1}},
		{"python f-string body kept", lang.Python, "s = f\"\"\"\n  {x}\n  text\n\"\"\"\n", []int{0, 1, 2, 3}},
		{"python rf-string body kept", lang.Python, "s = rf'''\nb\n'''\n", []int{0, 1, 2}},
		{"f prefix needs identifier boundary", lang.Python, "buf\"\"\"\nz\n\"\"\"\n", []int{0}},
		{"escaped quote keeps triple string open", lang.Python, "s = \"\"\"a\\\"\"\"\nb\n\"\"\"\n", []int{0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Indices(Classify(mustRule(t, tc.lang), tc.src, PolicyStrict))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("strict %q = %v, want %v", tc.src, got, tc.want)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyCode, "CODE": PolicyCode, " strict ": PolicyStrict} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("loose"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestCount(t *testing.T) {
	src := "\n        int xyz() {\n            auto x = 10;\n        }\n        "
	if got := Count(mustRule(t, lang.C), src, PolicyCode); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}
	if got := Count(mustRule(t, lang.C), src, PolicyStrict); got != 2 {
		t.Fatalf("strict Count = %d, want 2", got)
	}
}

func TestClean(t *testing.T) {
	cases := []struct {
		name   string
		lang   lang.Language
		policy Policy
		src    string
		want   string
	}{
		{"c comments removed", lang.C, PolicyCode, "int a; // c\n\n/* x */ int b = 1; /* y */\n}\n", "int a;\n int b = 1;\n}\n"},
		{"strict drops strings and braces", lang.Rust, PolicyStrict, "let s = \"hi\";\n}\n", "let s = ;\n"},
		{"no trailing newline", lang.Python, PolicyCode, "x = 1 # c", "x = 1\n"},
		{"empty", lang.Python, PolicyCode, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(mustRule(t, tc.lang), tc.src, tc.policy); got != tc.want {
				t.Fatalf("Clean = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEveryByteAttributedOnce(t *testing.T) {
	r := mustRule(t, lang.CPP)
	src := "a /* b\r\n c */ \"d\\\"\" R\"k(e)k\" 'f' // g \\\n h\n\u00e9\xff"
	sc := New(r, src)
	next := 0
	line := 0
	for {
		tok, ok := sc.Next()
		if !ok {
			break
		}
		if tok.Offset != next || tok.Len <= 0 {
			t.Fatalf("token %+v does not continue at %d", tok, next)
		}
		if tok.Line != line {
			t.Fatalf("token %+v on line %d, want %d", tok, tok.Line, line)
		}
		if tok.Class == Newline {
			line++
		}
		next += tok.Len
	}
	if next != len(src) {
		t.Fatalf("consumed %d bytes of %d", next, len(src))
	}
}
