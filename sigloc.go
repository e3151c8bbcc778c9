// Package sigloc reports which lines of a source snippet carry code.
//
// A line is meaningful unless it is empty, whitespace-only, or lies entirely
// inside a comment. Strings, lone braces and statement terminators all count.
//
//	idx, err := sigloc.MeaningfulLines(sigloc.C, src)
//
// All functions are pure and safe for concurrent use.
package sigloc

import (
	"github.com/phyten/sigloc/internal/lang"
	"github.com/phyten/sigloc/internal/model"
	"github.com/phyten/sigloc/internal/scan"
)

// Language is a normalised language tag.
type Language = lang.Language

// LineRecord is the classification of one physical line.
type LineRecord = model.LineRecord

// Policy selects which tokens make a line meaningful.
type Policy = scan.Policy

const (
	C          = lang.C
	CPP        = lang.CPP
	Java       = lang.Java
	CSharp     = lang.CSharp
	Go         = lang.Go
	Rust       = lang.Rust
	JavaScript = lang.JavaScript
	TypeScript = lang.TypeScript
	Python     = lang.Python
	Ruby       = lang.Ruby
	Shell      = lang.Shell

	PolicyCode   = scan.PolicyCode
	PolicyStrict = scan.PolicyStrict
)

// ErrUnsupportedLanguage is matched (errors.Is) by every lookup failure.
var ErrUnsupportedLanguage = lang.ErrUnsupportedLanguage

// UnsupportedLanguageError names the tag that failed lookup.
type UnsupportedLanguageError = lang.UnsupportedLanguageError

type settings struct {
	policy   Policy
	registry *lang.Registry
}

// Option configures a single call.
type Option func(*settings)

// WithPolicy overrides the default PolicyCode.
func WithPolicy(p Policy) Option {
	return func(s *settings) { s.policy = p }
}

// WithRegistry classifies against a custom registry.
func WithRegistry(reg *lang.Registry) Option {
	return func(s *settings) {
		if reg != nil {
			s.registry = reg
		}
	}
}

func resolve(language Language, opts []Option) (*lang.Rule, settings, error) {
	s := settings{policy: scan.PolicyCode, registry: lang.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	rule, err := s.registry.RulesFor(language)
	if err != nil {
		return nil, s, err
	}
	return rule, s, nil
}

// MeaningfulLines returns the 0-based indices of the lines of source that
// contain code, in ascending order. The only error is an unsupported language.
func MeaningfulLines(language Language, source string, opts ...Option) ([]int, error) {
	rule, s, err := resolve(language, opts)
	if err != nil {
		return nil, err
	}
	return scan.Indices(scan.Classify(rule, source, s.policy)), nil
}

// Classify returns a record per physical line.
func Classify(language Language, source string, opts ...Option) ([]LineRecord, error) {
	rule, s, err := resolve(language, opts)
	if err != nil {
		return nil, err
	}
	return scan.Classify(rule, source, s.policy), nil
}

// Count returns the number of meaningful lines.
func Count(language Language, source string, opts ...Option) (int, error) {
	rule, s, err := resolve(language, opts)
	if err != nil {
		return 0, err
	}
	return scan.Count(rule, source, s.policy), nil
}

// Clean returns the meaningful lines with comments stripped.
func Clean(language Language, source string, opts ...Option) (string, error) {
	rule, s, err := resolve(language, opts)
	if err != nil {
		return "", err
	}
	return scan.Clean(rule, source, s.policy), nil
}

// Languages lists the built-in language tags.
func Languages() []Language {
	return lang.Default().Languages()
}
