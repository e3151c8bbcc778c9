// Package scan walks source text with a per-language lexical state machine and
// classifies each physical line.
package scan

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phyten/sigloc/internal/lang"
)

// Class is what a consumed unit of input contributes to its line.
type Class uint8

const (
	Space Class = iota
	Comment
	Code
	String
	Newline
)

func (c Class) String() string {
	switch c {
	case Space:
		return "space"
	case Comment:
		return "comment"
	case Code:
		return "code"
	case String:
		return "string"
	case Newline:
		return "newline"
	default:
		return "unknown"
	}
}

// Token is one consumed unit: a rune, a run of whitespace, a delimiter, or a
// line terminator. Line is 0-based.
type Token struct {
	Offset int
	Len    int
	Line   int
	Class  Class
}

// Text returns the token's bytes within src.
func (t Token) Text(src string) string { return src[t.Offset : t.Offset+t.Len] }

// Scanner is single-use and not safe for concurrent use.
type Scanner struct {
	rule      *lang.Rule
	src       string
	pos       int
	line      int
	lineStart int
	state     State
}

// New returns a scanner positioned at the start of src in the default state.
func New(rule *lang.Rule, src string) *Scanner {
	return &Scanner{rule: rule, src: src}
}

// State returns the current lexical state.
func (s *Scanner) State() State { return s.state }

// Next consumes one unit and reports false at end of input. Unterminated
// constructs simply run to the end.
func (s *Scanner) Next() (Token, bool) {
	if s.pos >= len(s.src) {
		return Token{}, false
	}
	if n := terminatorLen(s.src, s.pos); n > 0 {
		s.state = s.state.atLineBoundary()
		tok := s.emit(n, Newline)
		s.line++
		s.lineStart = s.pos
		return tok, true
	}
	switch s.state.Kind {
	case InLineComment:
		return s.stepLineComment(), true
	case InBlockComment:
		return s.stepBlockComment(), true
	case InString:
		return s.stepString(), true
	default:
		return s.stepDefault(), true
	}
}

func (s *Scanner) stepDefault() Token {
	if n := spaceLen(s.src, s.pos); n > 0 {
		return s.emit(n, Space)
	}
	rest := s.src[s.pos:]
	for _, op := range s.rule.Openers() {
		if !strings.HasPrefix(rest, op.Token) {
			continue
		}
		switch op.Kind {
		case lang.OpenLineComment:
			s.state = State{Kind: InLineComment}
			return s.emit(len(op.Token), Comment)
		case lang.OpenBlockComment:
			if s.rule.BlockComments[op.Index].LineStart && !s.atLineStart() {
				continue
			}
			s.state = State{Kind: InBlockComment, Depth: 1, Block: op.Index}
			return s.emit(len(op.Token), Comment)
		case lang.OpenString:
			d := s.rule.Strings[op.Index]
			if startsIdent(op.Token) && !s.identBoundary() {
				continue
			}
			closing := s.rule.CloseOf(op.Index)
			class := stringClass(d.Code)
			if d.MaxLen > 0 {
				n, ok := charLiteralLen(rest, op.Token, closing, d)
				if !ok {
					continue
				}
				return s.emit(n, class)
			}
			s.state = State{Kind: InString, Quote: closing, Raw: d.Raw, Multiline: d.Multiline, Code: d.Code}
			return s.emit(len(op.Token), class)
		case lang.OpenRawString:
			if !s.identBoundary() {
				continue
			}
			n, closing, ok := rawOpen(rest, op.Token, s.rule.RawStrings[op.Index])
			if !ok {
				continue
			}
			s.state = State{Kind: InString, Quote: closing, Raw: true, Multiline: true}
			return s.emit(n, String)
		}
	}
	return s.emit(runeLen(s.src, s.pos), Code)
}

func (s *Scanner) stepLineComment() Token {
	s.state.Escaped = false
	if n := spaceLen(s.src, s.pos); n > 0 {
		return s.emit(n, Space)
	}
	if s.rule.LineContinuation && s.src[s.pos] == '\\' {
		s.state.Escaped = true
		return s.emit(1, Comment)
	}
	return s.emit(runeLen(s.src, s.pos), Comment)
}

func (s *Scanner) stepBlockComment() Token {
	if n := spaceLen(s.src, s.pos); n > 0 {
		return s.emit(n, Space)
	}
	rest := s.src[s.pos:]
	b := s.rule.BlockComments[s.state.Block]
	if strings.HasPrefix(rest, b.End) && (!b.LineStart || s.atLineStart()) {
		s.state.Depth--
		if s.state.Depth <= 0 {
			s.state = State{}
		}
		return s.emit(len(b.End), Comment)
	}
	if b.Nestable && strings.HasPrefix(rest, b.Start) {
		s.state.Depth++
		return s.emit(len(b.Start), Comment)
	}
	return s.emit(runeLen(s.src, s.pos), Comment)
}

func (s *Scanner) stepString() Token {
	class := stringClass(s.state.Code)
	if s.state.Escaped {
		s.state.Escaped = false
		if spaceLen(s.src, s.pos) > 0 {
			return s.emit(runeLen(s.src, s.pos), Space)
		}
		return s.emit(runeLen(s.src, s.pos), class)
	}
	if n := spaceLen(s.src, s.pos); n > 0 {
		return s.emit(n, Space)
	}
	if !s.state.Raw && s.src[s.pos] == '\\' {
		s.state.Escaped = true
		return s.emit(1, class)
	}
	if strings.HasPrefix(s.src[s.pos:], s.state.Quote) {
		n := len(s.state.Quote)
		s.state = State{}
		return s.emit(n, class)
	}
	return s.emit(runeLen(s.src, s.pos), class)
}

// stringClass is Code for interpolating literals.
func stringClass(code bool) Class {
	if code {
		return Code
	}
	return String
}

func (s *Scanner) emit(n int, class Class) Token {
	tok := Token{Offset: s.pos, Len: n, Line: s.line, Class: class}
	s.pos += n
	return tok
}

func (s *Scanner) atLineStart() bool {
	return strings.TrimLeft(s.src[s.lineStart:s.pos], " \t") == ""
}

func (s *Scanner) identBoundary() bool {
	if s.pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s.src[:s.pos])
	return !isIdentRune(r)
}

// terminatorLen recognises "\n", "\r\n" and a lone "\r".
func terminatorLen(src string, pos int) int {
	switch src[pos] {
	case '\n':
		return 1
	case '\r':
		if pos+1 < len(src) && src[pos+1] == '\n' {
			return 2
		}
		return 1
	}
	return 0
}

// spaceLen returns the byte length of the whitespace run at pos, stopping at
// a line terminator. A byte order mark counts as whitespace.
func spaceLen(src string, pos int) int {
	i := pos
	for i < len(src) {
		c := src[i]
		if c == '\n' || c == '\r' {
			break
		}
		if c < utf8.RuneSelf {
			if c == ' ' || c == '\t' || c == '\f' || c == '\v' {
				i++
				continue
			}
			break
		}
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == '\uFEFF' || (r != utf8.RuneError && unicode.IsSpace(r)) {
			i += size
			continue
		}
		break
	}
	return i - pos
}

func runeLen(src string, pos int) int {
	if src[pos] < utf8.RuneSelf {
		return 1
	}
	_, size := utf8.DecodeRuneInString(src[pos:])
	return size
}

// startsIdent reports whether tok begins with an identifier rune, as f" does.
// Such delimiters only open at an identifier boundary.
func startsIdent(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return isIdentRune(r)
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// charLiteralLen measures a char-literal style string ('x', '\n') that must
// close on the same line within d.MaxLen bytes.
func charLiteralLen(rest, open, closing string, d lang.StringDelim) (int, bool) {
	body := rest[len(open):]
	limit := len(body)
	if limit > d.MaxLen {
		limit = d.MaxLen
	}
	for i := 0; i < limit; {
		c := body[i]
		if c == '\n' || c == '\r' {
			return 0, false
		}
		if !d.Raw && c == '\\' {
			if i+1 < len(body) && (body[i+1] == '\n' || body[i+1] == '\r') {
				return 0, false
			}
			i += 2
			continue
		}
		if strings.HasPrefix(body[i:], closing) {
			return len(open) + i + len(closing), true
		}
		i++
	}
	return 0, false
}

const maxRawKey = 16

// rawOpen matches prefix + key + Open and returns the consumed length and the
// literal closing delimiter.
func rawOpen(rest, prefix string, raw lang.RawString) (int, string, bool) {
	i := len(prefix)
	for i < len(rest) && i-len(prefix) < maxRawKey && rawKeyByte(raw.Key, rest[i]) {
		i++
	}
	key := rest[len(prefix):i]
	if !strings.HasPrefix(rest[i:], raw.Open) {
		return 0, "", false
	}
	return i + len(raw.Open), raw.Close + key + raw.Suffix, true
}

func rawKeyByte(k lang.KeyClass, c byte) bool {
	switch k {
	case lang.KeyHashes:
		return c == '#'
	case lang.KeyEquals:
		return c == '='
	case lang.KeyIdent:
		return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
	default:
		return false
	}
}
