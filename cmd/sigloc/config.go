package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/phyten/sigloc/internal/cache"
	"github.com/phyten/sigloc/internal/config"
	"github.com/phyten/sigloc/internal/detect"
	"github.com/phyten/sigloc/internal/engine"
	engineopts "github.com/phyten/sigloc/internal/engine/opts"
	"github.com/phyten/sigloc/internal/lang"
)

// settings は既定値 < 設定ファイル < 環境変数 < フラグ の順に重ねた結果です。
type settings struct {
	Engine     config.EngineSettings
	UI         config.UISettings
	Registry   *lang.Registry
	Detector   *detect.Detector
	ConfigPath string
}

// loadSettings は repo を起点に設定ファイルを探し、環境変数とフラグを重ねます。
// 読み込みや検証の失敗はすべて使い方の誤りとして扱います。
func (a *app) loadSettings(repo string, flags config.EngineConfig, uiFlags config.UIConfig) (*settings, error) {
	if strings.TrimSpace(repo) == "" {
		repo = "."
	}
	explicit := a.configPath
	if explicit == "" {
		explicit = a.getenv("SIGLOC_CONFIG")
	}
	path, origin, err := config.Find(repo, explicit, a.getenv("XDG_CONFIG_HOME"), a.getenv("HOME"))
	if err != nil {
		return nil, usageErrorf("config: %w", err)
	}
	fileCfg, err := config.Load(path)
	if err != nil {
		return nil, usageErrorf("config: %w", err)
	}
	if path != "" {
		a.log.Debug("loaded config", "path", path, "origin", string(origin))
	}
	envCfg, err := config.FromEnv(a.getenv)
	if err != nil {
		return nil, usageError(err)
	}

	base := config.EngineSettingsFromOptions(engineopts.Defaults(repo))
	eng := config.MergeEngine(base, fileCfg.Engine, envCfg.Engine, flags)
	color, err := config.CanonicalizeColor(eng.Color)
	if err != nil {
		return nil, usageError(err)
	}
	eng.Color = color
	ui, err := config.NormalizeUI(config.MergeUI(config.DefaultUISettings(), fileCfg.UI, envCfg.UI, uiFlags))
	if err != nil {
		return nil, usageError(err)
	}

	langCfg := config.Config{Languages: config.MergeLanguages(fileCfg.Languages, envCfg.Languages)}
	reg, err := config.BuildRegistry(langCfg)
	if err != nil {
		return nil, usageError(err)
	}
	return &settings{
		Engine:     eng,
		UI:         ui,
		Registry:   reg,
		Detector:   detect.New(langCfg.DetectMappings()),
		ConfigPath: path,
	}, nil
}

// engineOptions は検証済みの engine.Options を作ります。キャッシュが開けない場合は
// 警告だけ出してキャッシュ無しで続けます。
func (a *app) engineOptions(s *settings) (engine.Options, error) {
	o := engineopts.Defaults(s.Engine.Repo)
	s.Engine.ApplyToOptions(&o)
	o.Registry = s.Registry
	o.Detector = s.Detector
	o.Logger = a.log
	if err := engineopts.NormalizeAndValidate(&o); err != nil {
		return o, usageError(err)
	}
	if s.Engine.Cache {
		c, err := cache.Open(s.Engine.CacheDir)
		if err != nil {
			a.log.Warn("cache disabled", "err", err)
		} else {
			o.Cache = c
		}
	}
	return o, nil
}

// engineFlags はスキャン系サブコマンド共通のフラグです。
type engineFlags struct {
	repo           string
	lang           string
	policy         string
	paths          []string
	excludes       []string
	pathRegex      []string
	detectLangs    []string
	excludeTypical bool
	jobs           int
	maxFileBytes   int
	noGit          bool
	withIndices    bool
	withLinks      bool
	noCache        bool
}

func (f *engineFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.repo, "repo", ".", "repository root")
	fs.StringVar(&f.lang, "lang", "", "treat every file as this language instead of detecting it")
	fs.StringVar(&f.policy, "policy", "", "code|strict")
	fs.StringSliceVar(&f.paths, "path", nil, "only include paths matching these globs (repeatable)")
	fs.StringSliceVar(&f.excludes, "exclude", nil, "exclude paths matching these globs (repeatable)")
	fs.StringSliceVar(&f.pathRegex, "path-regex", nil, "only include paths matching these regular expressions")
	fs.StringSliceVar(&f.detectLangs, "detect-langs", nil, "only include files detected as these languages")
	fs.BoolVar(&f.excludeTypical, "exclude-typical", false, "exclude vendor, node_modules, build output and minified files")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "max parallel workers (default: number of CPUs)")
	fs.IntVar(&f.maxFileBytes, "max-file-bytes", 0, "skip files larger than this (0 = unlimited)")
	fs.BoolVar(&f.noGit, "no-git", false, "walk the directory instead of using git ls-files")
	fs.BoolVar(&f.withIndices, "with-indices", false, "include meaningful line indices per file")
	fs.BoolVar(&f.withLinks, "with-links", false, "add a hosted blob URL per file (from the git remote and HEAD)")
	fs.BoolVar(&f.noCache, "no-cache", false, "do not read or write the result cache")
}

// layer は明示的に指定されたフラグだけを設定レイヤーに変換します。
func (f *engineFlags) layer(fs *pflag.FlagSet) config.EngineConfig {
	var c config.EngineConfig
	c.Repo = changedString(fs, "repo", f.repo)
	c.Lang = changedString(fs, "lang", f.lang)
	c.Policy = changedString(fs, "policy", f.policy)
	c.Paths = changedStrings(fs, "path", f.paths)
	c.Excludes = changedStrings(fs, "exclude", f.excludes)
	c.PathRegex = changedStrings(fs, "path-regex", f.pathRegex)
	c.DetectLangs = changedStrings(fs, "detect-langs", f.detectLangs)
	c.ExcludeTypical = changedBool(fs, "exclude-typical", f.excludeTypical)
	c.Jobs = changedInt(fs, "jobs", f.jobs)
	c.MaxFileBytes = changedInt(fs, "max-file-bytes", f.maxFileBytes)
	c.NoGit = changedBool(fs, "no-git", f.noGit)
	c.WithIndices = changedBool(fs, "with-indices", f.withIndices)
	c.WithLinks = changedBool(fs, "with-links", f.withLinks)
	if fs.Changed("no-cache") {
		enabled := !f.noCache
		c.Cache = &enabled
	}
	return c
}

func changedString(fs *pflag.FlagSet, name, v string) *string {
	if !fs.Changed(name) {
		return nil
	}
	return &v
}

func changedStrings(fs *pflag.FlagSet, name string, v []string) *[]string {
	if !fs.Changed(name) {
		return nil
	}
	out := engineopts.SplitMulti(v)
	return &out
}

func changedBool(fs *pflag.FlagSet, name string, v bool) *bool {
	if !fs.Changed(name) {
		return nil
	}
	return &v
}

func changedInt(fs *pflag.FlagSet, name string, v int) *int {
	if !fs.Changed(name) {
		return nil
	}
	return &v
}

func describeConfig(s *settings) string {
	if s.ConfigPath == "" {
		return "none"
	}
	return fmt.Sprintf("%q", s.ConfigPath)
}
