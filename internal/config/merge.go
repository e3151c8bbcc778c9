package config

import "strings"

// MergeEngine は base に layers を順に重ねます（既定 < ファイル < 環境変数 < フラグ）。
func MergeEngine(base EngineSettings, layers ...EngineConfig) EngineSettings {
	out := base
	for _, layer := range layers {
		overrideLang(&out.Lang, layer.Lang)
		overridePolicy(&out.Policy, layer.Policy)
		overrideList(&out.Paths, layer.Paths)
		overrideList(&out.Excludes, layer.Excludes)
		overrideList(&out.PathRegex, layer.PathRegex)
		override(&out.ExcludeTypical, layer.ExcludeTypical)
		overrideLangList(&out.DetectLangs, layer.DetectLangs)
		override(&out.Jobs, layer.Jobs)
		overrideTrimmed(&out.Repo, layer.Repo)
		override(&out.MaxFileBytes, layer.MaxFileBytes)
		override(&out.NoGit, layer.NoGit)
		override(&out.WithIndices, layer.WithIndices)
		override(&out.WithLinks, layer.WithLinks)
		override(&out.Cache, layer.Cache)
		overrideTrimmed(&out.CacheDir, layer.CacheDir)
		overrideTrimmed(&out.Output, layer.Output)
		overrideTrimmed(&out.Color, layer.Color)
	}
	if strings.TrimSpace(out.Output) == "" {
		out.Output = "table"
	}
	if strings.TrimSpace(out.Color) == "" {
		out.Color = "auto"
	}
	if strings.TrimSpace(out.Policy) == "" {
		out.Policy = "code"
	}
	return out
}

func MergeUI(base UISettings, layers ...UIConfig) UISettings {
	out := base
	for _, layer := range layers {
		overrideTrimmed(&out.Fields, layer.Fields)
		overrideTrimmed(&out.Sort, layer.Sort)
	}
	return out
}

func MergeLanguages(layers ...map[string]LanguageConfig) map[string]LanguageConfig {
	var out map[string]LanguageConfig
	for _, layer := range layers {
		for name, lc := range layer {
			if out == nil {
				out = make(map[string]LanguageConfig)
			}
			out[name] = lc
		}
	}
	return out
}
