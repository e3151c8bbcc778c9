package config

import (
	"sort"
	"strings"

	"github.com/phyten/sigloc/internal/engine"
	"github.com/phyten/sigloc/internal/lang"
	"github.com/phyten/sigloc/internal/scan"
)

type EngineConfig struct {
	Lang           *string   `yaml:"lang" toml:"lang" json:"lang"`
	Policy         *string   `yaml:"policy" toml:"policy" json:"policy"`
	Paths          *[]string `yaml:"path" toml:"path" json:"path"`
	Excludes       *[]string `yaml:"exclude" toml:"exclude" json:"exclude"`
	PathRegex      *[]string `yaml:"path_regex" toml:"path_regex" json:"path_regex"`
	ExcludeTypical *bool     `yaml:"exclude_typical" toml:"exclude_typical" json:"exclude_typical"`
	DetectLangs    *[]string `yaml:"detect_langs" toml:"detect_langs" json:"detect_langs"`
	Jobs           *int      `yaml:"jobs" toml:"jobs" json:"jobs"`
	Repo           *string   `yaml:"repo" toml:"repo" json:"repo"`
	MaxFileBytes   *int      `yaml:"max_file_bytes" toml:"max_file_bytes" json:"max_file_bytes"`
	NoGit          *bool     `yaml:"no_git" toml:"no_git" json:"no_git"`
	WithIndices    *bool     `yaml:"with_indices" toml:"with_indices" json:"with_indices"`
	WithLinks      *bool     `yaml:"with_links" toml:"with_links" json:"with_links"`
	Cache          *bool     `yaml:"cache" toml:"cache" json:"cache"`
	CacheDir       *string   `yaml:"cache_dir" toml:"cache_dir" json:"cache_dir"`
	Output         *string   `yaml:"output" toml:"output" json:"output"`
	Color          *string   `yaml:"color" toml:"color" json:"color"`
}

type UIConfig struct {
	Fields *string `yaml:"fields" toml:"fields" json:"fields"`
	Sort   *string `yaml:"sort" toml:"sort" json:"sort"`
}

// LanguageConfig は設定ファイルで追加・上書きする言語ルールです。
// Extensions（".ml" や "Justfile"）は検出表にも登録されます。
type LanguageConfig struct {
	lang.Rule
	Extensions []string `json:"extensions,omitempty"`
}

type Config struct {
	Engine    EngineConfig              `yaml:"engine" toml:"engine" json:"engine"`
	UI        UIConfig                  `yaml:"ui" toml:"ui" json:"ui"`
	Languages map[string]LanguageConfig `yaml:"languages" toml:"languages" json:"languages"`
}

type EngineSettings struct {
	Lang           string
	Policy         string
	Paths          []string
	Excludes       []string
	PathRegex      []string
	ExcludeTypical bool
	DetectLangs    []string
	Jobs           int
	Repo           string
	MaxFileBytes   int
	NoGit          bool
	WithIndices    bool
	WithLinks      bool
	Cache          bool
	CacheDir       string
	Output         string
	Color          string
}

type UISettings struct {
	Fields string
	Sort   string
}

func EngineSettingsFromOptions(opts engine.Options) EngineSettings {
	return EngineSettings{
		Lang:           opts.Language,
		Policy:         string(opts.Policy),
		Paths:          cloneStrings(opts.Paths),
		Excludes:       cloneStrings(opts.Excludes),
		PathRegex:      cloneStrings(opts.PathRegex),
		ExcludeTypical: opts.ExcludeTypical,
		DetectLangs:    cloneStrings(opts.DetectLangs),
		Jobs:           opts.Jobs,
		Repo:           opts.RepoDir,
		MaxFileBytes:   opts.MaxFileBytes,
		NoGit:          opts.NoGit,
		WithIndices:    opts.WithIndices,
		WithLinks:      opts.WithLinks,
		Cache:          true,
		Output:         "table",
		Color:          "auto",
	}
}

func (s EngineSettings) ApplyToOptions(opts *engine.Options) {
	if opts == nil {
		return
	}
	opts.Language = s.Lang
	opts.Policy = scan.Policy(s.Policy)
	opts.Paths = cloneStrings(s.Paths)
	opts.Excludes = cloneStrings(s.Excludes)
	opts.PathRegex = cloneStrings(s.PathRegex)
	opts.ExcludeTypical = s.ExcludeTypical
	opts.DetectLangs = cloneStrings(s.DetectLangs)
	opts.Jobs = s.Jobs
	if trimmed := strings.TrimSpace(s.Repo); trimmed != "" {
		opts.RepoDir = trimmed
	}
	opts.MaxFileBytes = s.MaxFileBytes
	opts.NoGit = s.NoGit
	opts.WithIndices = s.WithIndices
	opts.WithLinks = s.WithLinks
}

func DefaultUISettings() UISettings {
	return UISettings{}
}

// Rules は languages セクションを名前順の lang.Rule 列にします。Name が空なら
// セクションのキーを使います。
func (c Config) Rules() []lang.Rule {
	names := make([]string, 0, len(c.Languages))
	for name := range c.Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]lang.Rule, 0, len(names))
	for _, name := range names {
		r := c.Languages[name].Rule
		if strings.TrimSpace(string(r.Name)) == "" {
			r.Name = lang.Language(name)
		}
		out = append(out, r)
	}
	return out
}

// DetectMappings は Extensions を detect.New 用の対応表にします。
func (c Config) DetectMappings() map[string]lang.Language {
	out := make(map[string]lang.Language)
	for name, lc := range c.Languages {
		target := lc.Name
		if strings.TrimSpace(string(target)) == "" {
			target = lang.Language(name)
		}
		for _, ext := range lc.Extensions {
			if trimmed := strings.TrimSpace(ext); trimmed != "" {
				out[trimmed] = target
			}
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
