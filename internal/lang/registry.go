package lang

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps language tags to rules. It is read-only after construction
// and safe for concurrent use.
type Registry struct {
	rules map[Language]*Rule
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default は組み込みルールのみを持つレジストリを返します。
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := NewRegistry(builtinRules()...)
		if err != nil {
			panic(fmt.Sprintf("lang: builtin rules: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// NewRegistry validates and compiles rules into a new registry. A later rule
// with the same name replaces an earlier one.
func NewRegistry(rules ...Rule) (*Registry, error) {
	reg := &Registry{rules: make(map[Language]*Rule, len(rules))}
	for _, r := range rules {
		r.Name = Parse(string(r.Name))
		if err := r.Validate(); err != nil {
			return nil, err
		}
		c := r.clone()
		c.compile()
		reg.rules[c.Name] = c
	}
	return reg, nil
}

// Extend returns a new registry holding the receiver's rules plus extra.
func (reg *Registry) Extend(extra ...Rule) (*Registry, error) {
	if len(extra) == 0 {
		return reg, nil
	}
	base := make([]Rule, 0, len(reg.rules)+len(extra))
	for _, name := range reg.Languages() {
		base = append(base, *reg.rules[name])
	}
	return NewRegistry(append(base, extra...)...)
}

// RulesFor looks up the rule for l. Aliases are resolved first.
func (reg *Registry) RulesFor(l Language) (*Rule, error) {
	name := Parse(string(l))
	if r, ok := reg.rules[name]; ok {
		return r, nil
	}
	return nil, &UnsupportedLanguageError{Name: string(l)}
}

// Supports reports whether a rule is registered for l.
func (reg *Registry) Supports(l Language) bool {
	_, ok := reg.rules[Parse(string(l))]
	return ok
}

// Languages returns every registered tag in sorted order.
func (reg *Registry) Languages() []Language {
	out := make([]Language, 0, len(reg.rules))
	for name := range reg.rules {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
