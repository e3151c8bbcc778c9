package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	engineopts "github.com/phyten/sigloc/internal/engine/opts"
)

var engineKeyMap = map[string]string{
	"lang":             "lang",
	"language":         "lang",
	"policy":           "policy",
	"path":             "path",
	"paths":            "path",
	"exclude":          "exclude",
	"excludes":         "exclude",
	"path_regex":       "path_regex",
	"path_regexes":     "path_regex",
	"detect_langs":     "detect_langs",
	"detect_languages": "detect_langs",
	"exclude_typical":  "exclude_typical",
	"max_file_bytes":   "max_file_bytes",
	"max_bytes":        "max_file_bytes",
	"jobs":             "jobs",
	"repo":             "repo",
	"no_git":           "no_git",
	"with_indices":     "with_indices",
	"with_links":       "with_links",
	"links":            "with_links",
	"cache":            "cache",
	"cache_dir":        "cache_dir",
	"output":           "output",
	"color":            "color",
}

var uiKeyMap = map[string]string{
	"fields": "fields",
	"sort":   "sort",
}

func Load(path string) (Config, error) {
	var cfg Config
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var raw map[string]any
	switch ext {
	case ".yaml", ".yml":
		if decodeErr := yaml.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, decodeErr)
		}
	case ".toml":
		if decodeErr := toml.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, decodeErr)
		}
	case ".json":
		if decodeErr := json.Unmarshal(data, &raw); decodeErr != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, decodeErr)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if raw == nil {
		return cfg, nil
	}
	decoded, err := decodeConfigMap(raw)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return decoded, nil
}

func decodeConfigMap(raw map[string]any) (Config, error) {
	var cfg Config
	engineSection := make(map[string]any)
	uiSection := make(map[string]any)

	if block, ok := raw["engine"]; ok {
		sub, err := toStringKeyMap(block)
		if err != nil {
			return cfg, fmt.Errorf("engine: %w", err)
		}
		if err := fillSection(engineSection, sub, engineKeyMap, "engine"); err != nil {
			return cfg, err
		}
	}
	if block, ok := raw["ui"]; ok {
		sub, err := toStringKeyMap(block)
		if err != nil {
			return cfg, fmt.Errorf("ui: %w", err)
		}
		if err := fillSection(uiSection, sub, uiKeyMap, "ui"); err != nil {
			return cfg, err
		}
	}
	if block, ok := raw["languages"]; ok {
		langs, err := decodeLanguages(block)
		if err != nil {
			return cfg, fmt.Errorf("languages: %w", err)
		}
		cfg.Languages = langs
	}

	for key, value := range raw {
		norm := normalizeKey(key)
		switch norm {
		case "engine", "ui", "languages":
			continue
		default:
			if canonical, ok := engineKeyMap[norm]; ok {
				engineSection[canonical] = value
				continue
			}
			if canonical, ok := uiKeyMap[norm]; ok {
				uiSection[canonical] = value
				continue
			}
			return cfg, fmt.Errorf("unknown config key: %s", key)
		}
	}

	if err := assignEngine(engineSection, &cfg.Engine); err != nil {
		return cfg, fmt.Errorf("engine: %w", err)
	}
	if err := assignUI(uiSection, &cfg.UI); err != nil {
		return cfg, fmt.Errorf("ui: %w", err)
	}
	return cfg, nil
}

func fillSection(dst, src map[string]any, allowed map[string]string, section string) error {
	for key, value := range src {
		canonical, ok := allowed[normalizeKey(key)]
		if !ok {
			return fmt.Errorf("unknown %s key: %s", section, key)
		}
		dst[canonical] = value
	}
	return nil
}

func assignEngine(section map[string]any, dst *EngineConfig) error {
	for key, value := range section {
		switch key {
		case "lang", "policy", "repo", "cache_dir":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			target := map[string]**string{"lang": &dst.Lang, "policy": &dst.Policy, "repo": &dst.Repo, "cache_dir": &dst.CacheDir}[key]
			*target = &str
		case "path", "exclude", "path_regex", "detect_langs":
			list, err := expectStringList(value, key)
			if err != nil {
				return err
			}
			target := map[string]**[]string{"path": &dst.Paths, "exclude": &dst.Excludes, "path_regex": &dst.PathRegex, "detect_langs": &dst.DetectLangs}[key]
			*target = &list
		case "exclude_typical", "no_git", "with_indices", "with_links", "cache":
			b, err := expectBool(value, key)
			if err != nil {
				return err
			}
			target := map[string]**bool{"exclude_typical": &dst.ExcludeTypical, "no_git": &dst.NoGit, "with_indices": &dst.WithIndices, "with_links": &dst.WithLinks, "cache": &dst.Cache}[key]
			*target = &b
		case "max_file_bytes":
			n, err := expectInt(value, key)
			if err != nil {
				return err
			}
			dst.MaxFileBytes = &n
		case "jobs":
			n, err := expectInt(value, key)
			if err != nil {
				return err
			}
			dst.Jobs = &n
		case "output":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			trimmed := strings.TrimSpace(str)
			dst.Output = &trimmed
		case "color":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			trimmed := strings.TrimSpace(str)
			dst.Color = &trimmed
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
	}
	return nil
}

func assignUI(section map[string]any, dst *UIConfig) error {
	for key, value := range section {
		switch key {
		case "fields":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			dst.Fields = &str
		case "sort":
			str, err := expectString(value, key)
			if err != nil {
				return err
			}
			dst.Sort = &str
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
	}
	return nil
}

// decodeLanguages は languages セクションを JSON 経由で LanguageConfig に変換します。
// YAML/TOML/JSON のどれから来ても同じキー名（line_comments など）を使います。
func decodeLanguages(block any) (map[string]LanguageConfig, error) {
	section, err := toStringKeyMap(block)
	if err != nil {
		return nil, err
	}
	out := make(map[string]LanguageConfig, len(section))
	for name, value := range section {
		plain, err := toJSONValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		data, err := json.Marshal(plain)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		var lc LanguageConfig
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&lc); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, fmt.Errorf("empty language name")
		}
		out[key] = lc
	}
	return out, nil
}

// toJSONValue は YAML 由来の map[any]any を json.Marshal できる形に揃えます。
func toJSONValue(v any) (any, error) {
	switch typed := v.(type) {
	case map[string]any, map[any]any:
		m, err := toStringKeyMap(typed)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(m))
		for k, item := range m {
			conv, err := toJSONValue(item)
			if err != nil {
				return nil, err
			}
			out[normalizeKey(k)] = conv
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			conv, err := toJSONValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	default:
		return v, nil
	}
}

func expectString(value any, field string) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%s cannot be null", field)
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expected string for %s, got %T", field, value)
}

func expectBool(value any, field string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return engineopts.ParseBool(v, field)
	default:
		return false, fmt.Errorf("expected bool for %s, got %T", field, value)
	}
}

func expectInt(value any, field string) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("expected integer for %s, got %v", field, value)
		}
		return int(v), nil
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s: %v", field, value)
		}
		return n, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("invalid integer value for %s: %q", field, v)
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s: %q", field, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer for %s, got %T", field, value)
	}
}

func expectStringList(value any, field string) ([]string, error) {
	switch v := value.(type) {
	case string:
		parts := engineopts.SplitMulti([]string{v})
		return normalizeList(parts), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, err := expectString(item, field)
			if err != nil {
				return nil, err
			}
			out = append(out, str)
		}
		return normalizeList(out), nil
	case []string:
		return normalizeList(v), nil
	default:
		return nil, fmt.Errorf("expected string or list for %s, got %T", field, value)
	}
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func toStringKeyMap(v any) (map[string]any, error) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, value := range typed {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key: %v", k)
			}
			out[key] = value
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected map, got %T", v)
	}
}

func normalizeKey(key string) string {
	norm := strings.ToLower(strings.TrimSpace(key))
	norm = strings.ReplaceAll(norm, "-", "_")
	return norm
}
