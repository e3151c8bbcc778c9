package config

import (
	"errors"
	"math"
	"strings"

	engineopts "github.com/phyten/sigloc/internal/engine/opts"
)

func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	var cfg Config
	var errs []error

	setString := func(target **string, key string) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		value := raw
		*target = &value
	}
	setList := func(target **[]string, key string) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		list := engineopts.SplitMulti([]string{raw})
		if len(list) == 0 {
			empty := make([]string, 0)
			*target = &empty
			return
		}
		copyVals := make([]string, len(list))
		copy(copyVals, list)
		*target = &copyVals
	}
	setBool := func(target **bool, key string) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		v, err := engineopts.ParseBool(raw, key)
		if err != nil {
			errs = append(errs, err)
			return
		}
		value := v
		*target = &value
	}
	setInt := func(target **int, key string, min, max int) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		v, err := engineopts.ParseIntInRange(raw, key, min, max)
		if err != nil {
			errs = append(errs, err)
			return
		}
		value := v
		*target = &value
	}

	setString(&cfg.Engine.Lang, "SIGLOC_LANG")
	setString(&cfg.Engine.Policy, "SIGLOC_POLICY")
	setList(&cfg.Engine.Paths, "SIGLOC_PATH")
	setList(&cfg.Engine.Excludes, "SIGLOC_EXCLUDE")
	setList(&cfg.Engine.PathRegex, "SIGLOC_PATH_REGEX")
	setList(&cfg.Engine.DetectLangs, "SIGLOC_DETECT_LANGS")
	setBool(&cfg.Engine.ExcludeTypical, "SIGLOC_EXCLUDE_TYPICAL")
	setString(&cfg.Engine.Output, "SIGLOC_OUTPUT")
	setString(&cfg.Engine.Color, "SIGLOC_COLOR")
	setInt(&cfg.Engine.MaxFileBytes, "SIGLOC_MAX_FILE_BYTES", 0, math.MaxInt)
	// Allow large values here and rely on NormalizeAndValidate to enforce the
	// canonical upper bound so every input path shares the same error message.
	setInt(&cfg.Engine.Jobs, "SIGLOC_JOBS", 0, math.MaxInt)
	setString(&cfg.Engine.Repo, "SIGLOC_REPO")
	setBool(&cfg.Engine.NoGit, "SIGLOC_NO_GIT")
	setBool(&cfg.Engine.WithIndices, "SIGLOC_WITH_INDICES")
	setBool(&cfg.Engine.WithLinks, "SIGLOC_WITH_LINKS")
	setBool(&cfg.Engine.Cache, "SIGLOC_CACHE")
	if raw := strings.TrimSpace(getenv("SIGLOC_NO_CACHE")); raw != "" {
		v, err := engineopts.ParseBool(raw, "SIGLOC_NO_CACHE")
		if err != nil {
			errs = append(errs, err)
		} else {
			value := !v
			cfg.Engine.Cache = &value
		}
	}
	setString(&cfg.Engine.CacheDir, "SIGLOC_CACHE_DIR")

	setString(&cfg.UI.Fields, "SIGLOC_FIELDS")
	setString(&cfg.UI.Sort, "SIGLOC_SORT")

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}
