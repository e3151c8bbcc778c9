package output

import (
	"testing"

	"github.com/phyten/sigloc/internal/engine"
	"github.com/phyten/sigloc/internal/model"
)

func TestParseSortSpecNormalizesKeys(t *testing.T) {
	spec, err := ParseSortSpec("-code, +Lang ,path,-total")
	if err != nil {
		t.Fatalf("ParseSortSpec failed: %v", err)
	}
	want := []SortKey{
		{Name: "code", Desc: true},
		{Name: "lang", Desc: false},
		{Name: "file", Desc: false},
		{Name: "lines", Desc: true},
	}
	if len(spec.Keys) != len(want) {
		t.Fatalf("unexpected key count: got=%v want=%v", spec.Keys, want)
	}
	for i, got := range spec.Keys {
		if got != want[i] {
			t.Fatalf("key %d mismatch: got=%+v want=%+v", i, got, want[i])
		}
	}
	if spec.String() != "-code,lang,file,-lines" {
		t.Fatalf("String() = %q", spec.String())
	}
}

func TestParseSortSpecErrors(t *testing.T) {
	for _, raw := range []string{"unknown", "code,,file", "-", "indices"} {
		if _, err := ParseSortSpec(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestApplySortCode降順に並ぶ(t *testing.T) {
	files := []engine.FileResult{
		{File: "b.go", Counts: model.Counts{Lines: 10, Code: 3}},
		{File: "a.go", Counts: model.Counts{Lines: 4, Code: 3}},
		{File: "c.go", Counts: model.Counts{Lines: 7, Code: 7}},
		{File: "d.go", Counts: model.Counts{Lines: 9, Code: 1}},
	}
	spec, err := ParseSortSpec("-code")
	if err != nil {
		t.Fatalf("ParseSortSpec failed: %v", err)
	}
	ApplySort(files, spec)
	want := []string{"c.go", "a.go", "b.go", "d.go"}
	for i := range want {
		if files[i].File != want[i] {
			t.Fatalf("unexpected order at %d: got=%s want=%s", i, files[i].File, want[i])
		}
	}
}

func TestApplySortRatioと既定順(t *testing.T) {
	files := []engine.FileResult{
		{File: "z.py", Counts: model.Counts{Lines: 4, Code: 1}},
		{File: "m.py", Counts: model.Counts{Lines: 2, Code: 2}},
		{File: "a.py", Counts: model.Counts{Lines: 4, Code: 2}},
	}
	spec, _ := ParseSortSpec("ratio")
	ApplySort(files, spec)
	if files[0].File != "z.py" || files[1].File != "a.py" || files[2].File != "m.py" {
		t.Fatalf("ratio ascending mismatch: %v", files)
	}
	ApplySort(files, SortSpec{})
	if files[0].File != "a.py" || files[2].File != "z.py" {
		t.Fatalf("empty spec should sort by file: %v", files)
	}
}
