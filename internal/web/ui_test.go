package web

import (
	"strings"
	"testing"

	"github.com/dop251/goja"
)

func newVM(t *testing.T) *goja.Runtime {
	t.Helper()
	vm := goja.New()
	if _, err := vm.RunString(Script()); err != nil {
		t.Fatalf("ui.js failed to evaluate: %v", err)
	}
	return vm
}

func runString(t *testing.T, vm *goja.Runtime, src string) string {
	t.Helper()
	v, err := vm.RunString(src)
	if err != nil {
		t.Fatalf("evaluation failed: %v\n%s", err, src)
	}
	return v.String()
}

func TestRenderLinesはHTMLをエスケープする(t *testing.T) {
	vm := newVM(t)
	got := runString(t, vm, `renderLines("x = '<img src=x onerror=alert(1)>'\n# <b>&</b>\n", {
		lines: [{index: 0, kind: "code"}, {index: 1, kind: "comment"}]
	})`)
	if strings.Contains(got, "<img") || strings.Contains(got, "<b>") {
		t.Fatalf("raw HTML leaked into output: %s", got)
	}
	for _, want := range []string{"&lt;img src=x onerror=alert(1)&gt;", "&#39;", "&lt;b&gt;&amp;&lt;/b&gt;", `<tr class="code" data-index="0">`, `<tr class="comment" data-index="1">`} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q: %s", want, got)
		}
	}
	if n := strings.Count(got, "<tr "); n != 2 {
		t.Fatalf("trailing newline should not add a row, got %d rows", n)
	}
}

func TestSplitLinesは改行コードを区別しない(t *testing.T) {
	vm := newVM(t)
	got := runString(t, vm, `JSON.stringify(splitLines("a\r\nb\rc\n\nd"))`)
	if got != `["a","b","c","","d"]` {
		t.Fatalf("splitLines mismatch: %s", got)
	}
	if got := runString(t, vm, `splitLines("").length`); got != "0" {
		t.Fatalf("empty source should have no lines, got %s", got)
	}
}

func TestRenderLinesDefaultsToBlank(t *testing.T) {
	vm := newVM(t)
	got := runString(t, vm, `renderLines("a\n\nb", {lines: [{index: 0, kind: "code"}]})`)
	if !strings.Contains(got, `<tr class="blank" data-index="2">`) {
		t.Fatalf("lines without a record should render as blank: %s", got)
	}
}

func TestRenderScanEscapesFilesAndErrors(t *testing.T) {
	vm := newVM(t)
	got := runString(t, vm, `renderScan({
		files: [{file: "dir/<file>&.go", lang: "go", lines: 4, code: 3, comment: 1, blank: 0}],
		errors: [{file: "err<file>", stage: "size", message: "<script>alert(1)</script>"}]
	})`)
	if strings.Contains(got, "<script>") || strings.Contains(got, "<file>") {
		t.Fatalf("raw HTML leaked into output: %s", got)
	}
	for _, want := range []string{"dir/&lt;file&gt;&amp;.go", "75.0%", "&lt;script&gt;"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q: %s", want, got)
		}
	}
	if empty := runString(t, vm, `renderScan({files: []})`); !strings.Contains(empty, "No results.") {
		t.Fatalf("empty scan should say so: %s", empty)
	}
}

func TestRenderErrorAndSummary(t *testing.T) {
	vm := newVM(t)
	if got := runString(t, vm, `renderError({error: "unsupported language \"<x>\""})`); !strings.Contains(got, "&lt;x&gt;") {
		t.Fatalf("error message not escaped: %s", got)
	}
	got := runString(t, vm, `renderSummary({lang: "c", count: 3, counts: {lines: 5}})`)
	if got != "c: 3 meaningful of 5 lines" {
		t.Fatalf("summary mismatch: %q", got)
	}
}
