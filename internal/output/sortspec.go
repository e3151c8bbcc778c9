package output

import (
	"cmp"
	"fmt"
	"sort"
	"strings"

	"github.com/phyten/sigloc/internal/engine"
)

type SortKey struct {
	Name string
	Desc bool
}

type SortSpec struct {
	Keys []SortKey
}

// ParseSortSpec は "-code,file" のような並び順指定を解釈します。
// 先頭の '-' で降順、'+' または無印で昇順です。
func ParseSortSpec(raw string) (SortSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortSpec{}, nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]SortKey, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			return SortSpec{}, fmt.Errorf("invalid sort key: empty segment")
		}
		desc := false
		switch token[0] {
		case '+':
			token = token[1:]
		case '-':
			desc = true
			token = token[1:]
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return SortSpec{}, fmt.Errorf("invalid sort key: sign without name")
		}
		name := strings.ToLower(token)
		if canonical, ok := fieldAliases[name]; ok {
			name = canonical
		}
		switch name {
		case "file", "lang", "lines", "code", "comment", "blank", "ratio":
		default:
			return SortSpec{}, fmt.Errorf("invalid sort key: %s", token)
		}
		keys = append(keys, SortKey{Name: name, Desc: desc})
	}
	return SortSpec{Keys: keys}, nil
}

// String renders the spec back into its flag form.
func (s SortSpec) String() string {
	parts := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		if k.Desc {
			parts[i] = "-" + k.Name
		} else {
			parts[i] = k.Name
		}
	}
	return strings.Join(parts, ",")
}

// ApplySort は安定ソートで files を並べ替えます。最後は常に file 昇順で決着させます。
func ApplySort(files []engine.FileResult, spec SortSpec) {
	keys := append(append([]SortKey{}, spec.Keys...), SortKey{Name: "file"})
	sort.SliceStable(files, func(i, j int) bool {
		a, b := &files[i], &files[j]
		for _, key := range keys {
			c := compareBy(a, b, key.Name)
			if c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareBy(a, b *engine.FileResult, key string) int {
	switch key {
	case "file":
		return cmp.Compare(a.File, b.File)
	case "lang":
		return cmp.Compare(a.Lang, b.Lang)
	case "lines":
		return cmp.Compare(a.Lines, b.Lines)
	case "code":
		return cmp.Compare(a.Code, b.Code)
	case "comment":
		return cmp.Compare(a.Comment, b.Comment)
	case "blank":
		return cmp.Compare(a.Blank, b.Blank)
	case "ratio":
		return cmp.Compare(a.Ratio(), b.Ratio())
	default:
		return 0
	}
}
