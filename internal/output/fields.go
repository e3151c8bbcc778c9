package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phyten/sigloc/internal/engine"
)

type Field struct {
	Key    string
	Header string
}

// FieldSelection は出力する列と、その列が追加のデータを必要とするかを表します。
type FieldSelection struct {
	Fields      []Field
	ShowIndices bool
}

type fieldMeta struct {
	header    string
	numeric   bool
	isIndices bool
}

var fieldRegistry = map[string]fieldMeta{
	"file":    {header: "FILE"},
	"lang":    {header: "LANG"},
	"lines":   {header: "LINES", numeric: true},
	"code":    {header: "CODE", numeric: true},
	"comment": {header: "COMMENT", numeric: true},
	"blank":   {header: "BLANK", numeric: true},
	"ratio":   {header: "RATIO", numeric: true},
	"indices": {header: "INDICES", isIndices: true},
	"url":     {header: "URL"},
}

var fieldAliases = map[string]string{
	"path":     "file",
	"language": "lang",
	"total":    "lines",
	"comments": "comment",
	"link":     "url",
}

// DefaultFieldKeys は --fields 未指定時の列です。
var DefaultFieldKeys = []string{"file", "lang", "lines", "code", "comment", "blank", "ratio"}

// ResolveFields は "file,code,ratio" のような指定を FieldSelection にします。
// raw が空なら既定の列を使い、withIndices のときだけ indices 列を足します。
func ResolveFields(raw string, withIndices bool) (FieldSelection, error) {
	raw = strings.TrimSpace(raw)
	keys := DefaultFieldKeys
	if raw != "" {
		parts := strings.Split(raw, ",")
		keys = make([]string, 0, len(parts))
		for _, part := range parts {
			name := strings.ToLower(strings.TrimSpace(part))
			if name == "" {
				return FieldSelection{}, fmt.Errorf("invalid fields: empty entry")
			}
			if canonical, ok := fieldAliases[name]; ok {
				name = canonical
			}
			if _, ok := fieldRegistry[name]; !ok {
				return FieldSelection{}, fmt.Errorf("unknown field: %s", strings.TrimSpace(part))
			}
			keys = append(keys, name)
		}
	} else if withIndices {
		keys = append(append([]string{}, keys...), "indices")
	}
	sel := FieldSelection{Fields: make([]Field, 0, len(keys))}
	for _, key := range keys {
		meta := fieldRegistry[key]
		sel.Fields = append(sel.Fields, Field{Key: key, Header: meta.header})
		if meta.isIndices {
			sel.ShowIndices = true
		}
	}
	return sel, nil
}

// DefaultFields は --fields 未指定時の列です。結果に indices や URL があればその列も足します。
func DefaultFields(res *engine.Result) FieldSelection {
	sel, _ := ResolveFields("", res.HasIndices)
	if res.HasLinks {
		sel.Fields = append(sel.Fields, Field{Key: "url", Header: fieldRegistry["url"].header})
	}
	return sel
}

// Keys returns the selected field keys in order.
func (s FieldSelection) Keys() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Key
	}
	return out
}

func Headers(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Header
	}
	return out
}

func RowValues(fr engine.FileResult, fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = formatFieldValue(fr, f.Key)
	}
	return out
}

func isNumeric(key string) bool { return fieldRegistry[key].numeric }

func formatFieldValue(fr engine.FileResult, key string) string {
	switch key {
	case "file":
		return fr.File
	case "lang":
		return fr.Lang
	case "lines":
		return strconv.Itoa(fr.Lines)
	case "code":
		return strconv.Itoa(fr.Code)
	case "comment":
		return strconv.Itoa(fr.Comment)
	case "blank":
		return strconv.Itoa(fr.Blank)
	case "ratio":
		return FormatRatio(fr.Ratio())
	case "indices":
		return FormatIndices(fr.Indices)
	case "url":
		return fr.URL
	default:
		return ""
	}
}

// FormatRatio は 0..1 の比率を "85.7%" の形にします。
func FormatRatio(r float64) string {
	return strconv.FormatFloat(r*100, 'f', 1, 64) + "%"
}

// FormatIndices は連続する行番号を範囲にまとめます（例: "0-2,5,7-8"）。
func FormatIndices(indices []int) string {
	if len(indices) == 0 {
		return ""
	}
	var b strings.Builder
	start, prev := indices[0], indices[0]
	flush := func() {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(start))
		if prev != start {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(prev))
		}
	}
	for _, idx := range indices[1:] {
		if idx == prev+1 {
			prev = idx
			continue
		}
		flush()
		start, prev = idx, idx
	}
	flush()
	return b.String()
}
