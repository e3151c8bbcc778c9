package engine

import (
	"path/filepath"
	"regexp"
	"testing"
)

func TestBuildPathspecs_DefaultsToDot(t *testing.T) {
	t.Parallel()

	got := buildPathspecs(nil, nil, false)
	want := []string{"."}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("unexpected result: %#v", got)
	}
}

func TestBuildPathspecsIncludesAndExcludes(t *testing.T) {
	t.Parallel()

	includes := []string{"src", " pkg ", "windows\\path"}
	excludes := []string{"vendor/**", ":(exclude)third_party/**", ":!build/**"}

	got := buildPathspecs(includes, excludes, true)

	expectedHead := []string{"src", "pkg", filepath.ToSlash("windows\\path")}
	for i, want := range expectedHead {
		if i >= len(got) || got[i] != want {
			t.Fatalf("include %d mismatch: got=%v want=%v", i, got, expectedHead)
		}
	}

	typical := typicalExcludePatterns
	start := len(expectedHead)
	if len(got) < start+len(typical) {
		t.Fatalf("expected typical excludes to be appended: %v", got)
	}
	for i, want := range typical {
		if got[start+i] != want {
			t.Fatalf("typical exclude mismatch at %d: got=%q want=%q", start+i, got[start+i], want)
		}
	}

	tail := got[start+len(typical):]
	expectedTail := []string{":(glob,exclude)vendor/**", ":(exclude)third_party/**", ":!build/**"}
	if len(tail) != len(expectedTail) {
		t.Fatalf("exclude length mismatch: got=%v want=%v", tail, expectedTail)
	}
	for i, want := range expectedTail {
		if tail[i] != want {
			t.Fatalf("exclude %d mismatch: got=%q want=%q", i, tail[i], want)
		}
	}
}

func TestStripMagic(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		":(glob,exclude)vendor/**": "vendor/**",
		":(exclude)third_party":    "third_party",
		":!build/**":               "build/**",
		"plain/*.go":               "plain/*.go",
	}
	for in, want := range cases {
		if got := stripMagic(in); got != want {
			t.Fatalf("stripMagic(%q)=%q want %q", in, got, want)
		}
	}
}

func TestPathFilterMatch(t *testing.T) {
	t.Parallel()

	f := newPathFilter([]string{"src", "cmd/**/*.go"}, []string{":!src/gen/**", "*_test.go"}, true)
	cases := []struct {
		rel  string
		want bool
	}{
		{"src/a.go", true},
		{"src/deep/b.rs", true},
		{"cmd/tool/main.go", true},
		{"cmd/tool/README", false},
		{"src/gen/x.go", false},
		{"src/a_test.go", false},
		{"docs/a.md", false},
	}
	for _, tc := range cases {
		if got := f.match(tc.rel); got != tc.want {
			t.Fatalf("match(%q)=%v want %v", tc.rel, got, tc.want)
		}
	}

	typical := newPathFilter(nil, nil, true)
	for _, rel := range []string{"vendor/x/y.go", "node_modules/a/index.js", "web/app.min.js"} {
		if typical.match(rel) {
			t.Fatalf("typical excludes should drop %q", rel)
		}
	}
	if !typical.match("web/app.js") {
		t.Fatalf("typical excludes should keep web/app.js")
	}
}

func TestCompilePathRegexTrimsAndValidates(t *testing.T) {
	t.Parallel()

	rx, err := compilePathRegex([]string{"  ", "^src/", "(cmd|pkg)"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rx) != 2 {
		t.Fatalf("expected 2 regexps, got %d", len(rx))
	}

	if _, err := compilePathRegex([]string{"["}); err == nil {
		t.Fatal("expected compile error for invalid regexp")
	}
}

func TestFilterByPathRegex(t *testing.T) {
	t.Parallel()

	files := []string{"src/main.go", "pkg/util.go", "docs/readme.md"}
	rx := []*regexp.Regexp{regexp.MustCompile(`^src/`), regexp.MustCompile(`\.go$`)}

	got := filterByPathRegex(append([]string(nil), files...), rx)
	want := []string{"src/main.go", "pkg/util.go"}
	if len(got) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("file %d mismatch: got=%q want=%q", i, got[i], want[i])
		}
	}

	same := filterByPathRegex(files, nil)
	if len(same) != len(files) {
		t.Fatalf("expected original slice when no regex: %d vs %d", len(same), len(files))
	}
}
