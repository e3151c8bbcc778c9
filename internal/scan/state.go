package scan

import "fmt"

// StateKind is the tag of the scanner's state variant.
type StateKind uint8

const (
	Default StateKind = iota
	InLineComment
	InBlockComment
	InString
)

func (k StateKind) String() string {
	switch k {
	case Default:
		return "default"
	case InLineComment:
		return "line-comment"
	case InBlockComment:
		return "block-comment"
	case InString:
		return "string"
	default:
		return fmt.Sprintf("state(%d)", uint8(k))
	}
}

// State is the scanner's lexical mode. Only the fields of the active Kind are
// meaningful:
//
//	InBlockComment: Block (index into Rule.BlockComments), Depth >= 1
//	InString:       Quote (literal closing delimiter), Raw, Multiline, Code
//
// Escaped marks the after-escape sub-state of InString, and a pending
// backslash continuation in InLineComment.
type State struct {
	Kind      StateKind
	Depth     int
	Block     int
	Quote     string
	Raw       bool
	Multiline bool
	Code      bool
	Escaped   bool
}

func (s State) String() string {
	switch s.Kind {
	case InBlockComment:
		return fmt.Sprintf("block-comment(depth=%d)", s.Depth)
	case InString:
		return fmt.Sprintf("string(%q, raw=%t)", s.Quote, s.Raw)
	default:
		return s.Kind.String()
	}
}

// atLineBoundary returns the state that carries into the next line.
func (s State) atLineBoundary() State {
	switch s.Kind {
	case InLineComment:
		if s.Escaped {
			s.Escaped = false
			return s
		}
		return State{}
	case InString:
		if s.Escaped {
			s.Escaped = false
			return s
		}
		if !s.Multiline {
			return State{}
		}
	}
	return s
}
