package scan

import (
	"fmt"
	"strings"

	"github.com/phyten/sigloc/internal/lang"
	"github.com/phyten/sigloc/internal/model"
)

// Policy decides which tokens make a line meaningful.
type Policy string

const (
	// PolicyCode: any token outside whitespace and comments is code, string
	// literals and lone braces included.
	PolicyCode Policy = "code"
	// PolicyStrict: string literals do not count, and a line whose code is made
	// only of the rule's structural characters is not meaningful.
	PolicyStrict Policy = "strict"
)

// ParsePolicy accepts "", "code" and "strict".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PolicyCode):
		return PolicyCode, nil
	case string(PolicyStrict):
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("invalid policy: %s (want code|strict)", s)
	}
}

// lineState accumulates what one physical line has seen so far.
type lineState struct {
	started bool
	code    bool
	comment bool
}

func (ls *lineState) observe(rule *lang.Rule, src string, tok Token, policy Policy) {
	ls.started = true
	switch tok.Class {
	case Comment:
		ls.comment = true
	case String:
		if policy == PolicyStrict {
			ls.comment = true
			return
		}
		ls.code = true
	case Code:
		if policy == PolicyStrict && structuralOnly(rule, tok.Text(src)) {
			return
		}
		ls.code = true
	}
}

func (ls lineState) kind() model.LineKind {
	switch {
	case ls.code:
		return model.LineCode
	case ls.comment:
		return model.LineComment
	default:
		return model.LineBlank
	}
}

func structuralOnly(rule *lang.Rule, text string) bool {
	for _, r := range text {
		if !rule.IsStructural(r) {
			return false
		}
	}
	return true
}

// Classify returns one record per physical line of src. A trailing line
// terminator does not open an extra empty line, so "" yields no records.
func Classify(rule *lang.Rule, src string, policy Policy) []model.LineRecord {
	records := make([]model.LineRecord, 0, strings.Count(src, "\n")+1)
	var cur lineState
	sc := New(rule, src)
	for {
		tok, ok := sc.Next()
		if !ok {
			break
		}
		if tok.Class == Newline {
			records = append(records, model.LineRecord{Index: tok.Line, Kind: cur.kind()})
			cur = lineState{}
			continue
		}
		cur.observe(rule, src, tok, policy)
	}
	if cur.started {
		records = append(records, model.LineRecord{Index: len(records), Kind: cur.kind()})
	}
	return records
}
