package config

import (
	"fmt"
	"strings"

	"github.com/phyten/sigloc/internal/lang"
)

// CanonicalizeColor accepts auto, always and never.
func CanonicalizeColor(raw string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(raw))
	switch c {
	case "", "auto":
		return "auto", nil
	case "always", "never":
		return c, nil
	default:
		return "", fmt.Errorf("invalid color: %s", raw)
	}
}

func NormalizeUI(values UISettings) (UISettings, error) {
	values.Fields = strings.TrimSpace(values.Fields)
	values.Sort = strings.TrimSpace(values.Sort)
	return values, nil
}

// BuildRegistry は組み込みルールに languages セクションを重ねたレジストリを返します。
func BuildRegistry(cfg Config) (*lang.Registry, error) {
	rules := cfg.Rules()
	if len(rules) == 0 {
		return lang.Default(), nil
	}
	reg, err := lang.Default().Extend(rules...)
	if err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}
	return reg, nil
}
