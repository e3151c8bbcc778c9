package scan

import (
	"strings"

	"github.com/phyten/sigloc/internal/lang"
	"github.com/phyten/sigloc/internal/model"
)

// Indices returns the indices of code lines in ascending order.
func Indices(records []model.LineRecord) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		if r.HasCode() {
			out = append(out, r.Index)
		}
	}
	return out
}

// MeaningfulLines classifies src under PolicyCode and collects the indices.
func MeaningfulLines(rule *lang.Rule, src string) []int {
	return Indices(Classify(rule, src, PolicyCode))
}

// Count returns the number of code lines.
func Count(rule *lang.Rule, src string, policy Policy) int {
	n := 0
	for _, r := range Classify(rule, src, policy) {
		if r.HasCode() {
			n++
		}
	}
	return n
}

// Clean returns src reduced to its meaningful lines with comments removed.
// Trailing whitespace is trimmed and every kept line ends with "\n".
func Clean(rule *lang.Rule, src string, policy Policy) string {
	var (
		out  strings.Builder
		line strings.Builder
		cur  lineState
	)
	flush := func() {
		if cur.code {
			out.WriteString(strings.TrimRight(line.String(), " \t\f\v"))
			out.WriteByte('\n')
		}
		line.Reset()
		cur = lineState{}
	}
	sc := New(rule, src)
	for {
		before := sc.State().Kind
		tok, ok := sc.Next()
		if !ok {
			break
		}
		if tok.Class == Newline {
			flush()
			continue
		}
		cur.observe(rule, src, tok, policy)
		switch tok.Class {
		case Space:
			if before != InLineComment && before != InBlockComment {
				line.WriteString(tok.Text(src))
			}
		case Code:
			line.WriteString(tok.Text(src))
		case String:
			if policy != PolicyStrict {
				line.WriteString(tok.Text(src))
			}
		}
	}
	flush()
	return out.String()
}
