package lang

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// KeyClass selects which characters may form the key of a keyed raw string.
type KeyClass string

const (
	// KeyHashes accepts a run of '#' (Rust r#"..."#).
	KeyHashes KeyClass = "hashes"
	// KeyIdent accepts up to 16 identifier characters (C++ R"tag(...)tag").
	KeyIdent KeyClass = "ident"
	// KeyEquals accepts a run of '=' (Lua [==[ ... ]==]).
	KeyEquals KeyClass = "equals"
)

// BlockComment は複数行にまたがり得るコメントの開始・終了トークンです。
type BlockComment struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Nestable bool   `json:"nestable,omitempty"`
	// LineStart の場合、区切りは行頭（インデントのみ許容）でのみ有効です。
	LineStart bool `json:"line_start,omitempty"`
}

// StringDelim は文字列リテラルの区切りです。Close が空なら Open と同じ。
type StringDelim struct {
	Open      string `json:"open"`
	Close     string `json:"close,omitempty"`
	Raw       bool   `json:"raw,omitempty"`
	Multiline bool   `json:"multiline,omitempty"`
	// MaxLen > 0 は文字リテラル扱い。同じ行の MaxLen バイト以内に閉じ区切りが
	// 見つからない場合、開き区切りは通常のコードとして扱われます。
	MaxLen int `json:"max_len,omitempty"`
	// Code marks interpolating literals (Python f"..."): their content counts
	// as code under the strict policy too.
	Code bool `json:"code,omitempty"`
}

// RawString は鍵付き生文字列です。閉じ区切りは Close + key + Suffix になります。
type RawString struct {
	Prefixes []string `json:"prefixes"`
	Key      KeyClass `json:"key"`
	Open     string   `json:"open"`
	Close    string   `json:"close"`
	Suffix   string   `json:"suffix,omitempty"`
}

// Rule describes one language's lexical conventions. A Rule handed out by a
// Registry is never mutated.
type Rule struct {
	Name             Language       `json:"name"`
	LineComments     []string       `json:"line_comments,omitempty"`
	BlockComments    []BlockComment `json:"block_comments,omitempty"`
	Strings          []StringDelim  `json:"strings,omitempty"`
	RawStrings       []RawString    `json:"raw_strings,omitempty"`
	LineContinuation bool           `json:"line_continuation,omitempty"`
	Structural       string         `json:"structural,omitempty"`

	openers     []Opener
	fingerprint string
}

// OpenerKind tells the scanner what an Opener starts.
type OpenerKind uint8

const (
	OpenLineComment OpenerKind = iota + 1
	OpenBlockComment
	OpenString
	OpenRawString
)

// Opener is one token that can leave the default state. Index points into the
// rule slice for its kind.
type Opener struct {
	Kind  OpenerKind
	Token string
	Index int
}

// Openers returns every opening token, longest first, so that `"""` wins over
// `"` and `--[[` wins over `--`.
func (r *Rule) Openers() []Opener { return r.openers }

// Fingerprint is a stable digest of the rule's lexical data.
func (r *Rule) Fingerprint() string { return r.fingerprint }

// CloseOf returns the closing delimiter of Strings[i].
func (r *Rule) CloseOf(i int) string {
	d := r.Strings[i]
	if d.Close != "" {
		return d.Close
	}
	return d.Open
}

// IsStructural reports whether ch is structure-only for the strict policy.
func (r *Rule) IsStructural(ch rune) bool {
	return r.Structural != "" && strings.ContainsRune(r.Structural, ch)
}

// Validate checks that every delimiter is usable.
func (r *Rule) Validate() error {
	var errs []error
	if strings.TrimSpace(string(r.Name)) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	for i, tok := range r.LineComments {
		if tok == "" {
			errs = append(errs, fmt.Errorf("line_comments[%d]: empty token", i))
		}
	}
	for i, b := range r.BlockComments {
		if b.Start == "" || b.End == "" {
			errs = append(errs, fmt.Errorf("block_comments[%d]: start and end are required", i))
		}
	}
	for i, s := range r.Strings {
		if s.Open == "" {
			errs = append(errs, fmt.Errorf("strings[%d]: open is required", i))
		}
		if s.MaxLen < 0 {
			errs = append(errs, fmt.Errorf("strings[%d]: max_len must be >= 0", i))
		}
	}
	for i, raw := range r.RawStrings {
		if len(raw.Prefixes) == 0 || raw.Close == "" {
			errs = append(errs, fmt.Errorf("raw_strings[%d]: prefixes and close are required", i))
		}
		for _, p := range raw.Prefixes {
			if p == "" {
				errs = append(errs, fmt.Errorf("raw_strings[%d]: empty prefix", i))
			}
		}
		switch raw.Key {
		case KeyHashes, KeyIdent, KeyEquals:
		default:
			errs = append(errs, fmt.Errorf("raw_strings[%d]: unknown key class %q", i, raw.Key))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("language %q: %w", r.Name, errors.Join(errs...))
}

func (r *Rule) compile() {
	var ops []Opener
	for i, tok := range r.LineComments {
		ops = append(ops, Opener{Kind: OpenLineComment, Token: tok, Index: i})
	}
	for i, b := range r.BlockComments {
		ops = append(ops, Opener{Kind: OpenBlockComment, Token: b.Start, Index: i})
	}
	for i, s := range r.Strings {
		ops = append(ops, Opener{Kind: OpenString, Token: s.Open, Index: i})
	}
	for i, raw := range r.RawStrings {
		for _, p := range raw.Prefixes {
			ops = append(ops, Opener{Kind: OpenRawString, Token: p, Index: i})
		}
	}
	// 同じ長さなら種類順（行コメント→ブロック→文字列→生文字列）を保つ。
	sort.SliceStable(ops, func(i, j int) bool {
		return len(ops[i].Token) > len(ops[j].Token)
	})
	r.openers = ops

	data, _ := json.Marshal(r)
	sum := sha256.Sum256(data)
	r.fingerprint = hex.EncodeToString(sum[:8])
}

// clone returns a deep copy so registries never share backing arrays with callers.
func (r Rule) clone() *Rule {
	out := r
	out.LineComments = append([]string(nil), r.LineComments...)
	out.BlockComments = append([]BlockComment(nil), r.BlockComments...)
	out.Strings = append([]StringDelim(nil), r.Strings...)
	out.RawStrings = make([]RawString, len(r.RawStrings))
	for i, raw := range r.RawStrings {
		raw.Prefixes = append([]string(nil), raw.Prefixes...)
		out.RawStrings[i] = raw
	}
	out.openers = nil
	out.fingerprint = ""
	return &out
}
