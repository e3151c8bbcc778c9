package opts

import (
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/phyten/sigloc/internal/detect"
	"github.com/phyten/sigloc/internal/engine"
	"github.com/phyten/sigloc/internal/lang"
	"github.com/phyten/sigloc/internal/scan"
)

const (
	maxJobs = 64
)

var (
	trueLiterals  = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "on": {}}
	falseLiterals = map[string]struct{}{"0": {}, "false": {}, "no": {}, "off": {}}
)

// Defaults returns the shared baseline options for both CLI and Web inputs.
func Defaults(repoDir string) engine.Options {
	jobs := runtime.NumCPU()
	if jobs < 1 {
		jobs = 1
	}
	if jobs > maxJobs {
		jobs = maxJobs
	}
	return engine.Options{
		RepoDir:        repoDir,
		Policy:         scan.PolicyCode,
		Jobs:           jobs,
		ExcludeTypical: false,
		WithIndices:    false,
		Progress:       false,
		MaxFileBytes:   0,
		NoGit:          false,
	}
}

// ApplyWebQueryToOptions copies recognised values from the query string into the
// provided options. Validation happens separately via NormalizeAndValidate.
func ApplyWebQueryToOptions(def engine.Options, q url.Values) (engine.Options, error) {
	out := def

	if raw, ok := lastLiteralValue(q["lang"]); ok {
		out.Language = raw
	}
	if raw, ok := lastLiteralValue(q["policy"]); ok {
		out.Policy = scan.Policy(raw)
	}
	if raw, ok := lastLiteralValue(q["jobs"]); ok {
		n, err := ParseIntInRange(raw, "jobs", 1, maxJobs)
		if err != nil {
			return out, err
		}
		out.Jobs = n
	}
	if raw, ok := lastLiteralValue(q["max_file_bytes"]); ok {
		n, err := ParseIntInRange(raw, "max_file_bytes", 0, -1)
		if err != nil {
			return out, err
		}
		out.MaxFileBytes = n
	}
	for key, dst := range map[string]*bool{
		"exclude_typical": &out.ExcludeTypical,
		"with_indices":    &out.WithIndices,
		"with_links":      &out.WithLinks,
		"no_git":          &out.NoGit,
	} {
		raw, ok := lastLiteralValue(q[key])
		if !ok {
			continue
		}
		v, err := ParseBool(raw, key)
		if err != nil {
			return out, err
		}
		*dst = v
	}
	if raw := q["path"]; len(raw) > 0 {
		out.Paths = SplitMulti(raw)
	}
	if raw := q["exclude"]; len(raw) > 0 {
		out.Excludes = SplitMulti(raw)
	}
	if raw := q["path_regex"]; len(raw) > 0 {
		out.PathRegex = SplitMulti(raw)
	}
	if raw := q["detect_langs"]; len(raw) > 0 {
		out.DetectLangs = SplitMulti(raw)
	}

	return out, nil
}

// NormalizeAndValidate ensures the options are canonical and within the allowed ranges.
func NormalizeAndValidate(o *engine.Options) error {
	p, err := scan.ParsePolicy(string(o.Policy))
	if err != nil {
		return fmt.Errorf("invalid --policy: %s", o.Policy)
	}
	o.Policy = p

	if o.Jobs < 1 || o.Jobs > maxJobs {
		return fmt.Errorf("jobs must be between 1 and %d", maxJobs)
	}

	if strings.TrimSpace(o.RepoDir) == "" {
		o.RepoDir = "."
	}

	if o.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must be >= 0")
	}

	reg := o.Registry
	if reg == nil {
		reg = lang.Default()
	}
	if v := strings.TrimSpace(o.Language); v != "" {
		l := lang.Parse(v)
		if !reg.Supports(l) {
			return &lang.UnsupportedLanguageError{Name: v}
		}
		o.Language = string(l)
	} else {
		o.Language = ""
	}

	o.Paths = trimSlice(o.Paths)
	o.Excludes = trimSlice(o.Excludes)
	for _, pat := range append(append([]string(nil), o.Paths...), o.Excludes...) {
		if strings.HasPrefix(pat, ":") {
			continue
		}
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("invalid glob pattern: %q", pat)
		}
	}
	o.PathRegex = trimSlice(o.PathRegex)
	o.DetectLangs = trimSlice(o.DetectLangs)
	if len(o.DetectLangs) > 0 {
		o.DetectLangs = detect.CanonicalDetectLangs(o.DetectLangs)
		for _, name := range o.DetectLangs {
			if !reg.Supports(lang.Language(name)) {
				return &lang.UnsupportedLanguageError{Name: name}
			}
		}
	}

	compiled, err := engine.CompilePathRegex(o.PathRegex)
	if err != nil {
		return fmt.Errorf("invalid --path-regex: %w", err)
	}
	o.PathRegexCompiled = compiled

	return nil
}

// ParseBool converts a string literal into a boolean, accepting multiple synonyms.
func ParseBool(raw, key string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := trueLiterals[v]; ok {
		return true, nil
	}
	if _, ok := falseLiterals[v]; ok {
		return false, nil
	}
	return false, fmt.Errorf("invalid value for %s: %q", key, raw)
}

// ParseIntInRange parses a string into an int and ensures it falls within [min, max].
// If max < min, the upper bound is ignored.
func ParseIntInRange(raw, key string, min, max int) (int, error) {
	n, err := parseInt(raw, key)
	if err != nil {
		return 0, err
	}
	if n < min {
		if max >= min {
			return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
		}
		return 0, fmt.Errorf("%s must be >= %d", key, min)
	}
	if max >= min && n > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}
	return n, nil
}

// NormalizeOutput validates and lower-cases the CLI/Web output format value.
func NormalizeOutput(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "table", "tsv", "csv", "json", "ndjson", "markdown":
		return v, nil
	case "md":
		return "markdown", nil
	}
	return "", fmt.Errorf("invalid --output: %s", value)
}

// SplitMulti turns repeated query parameters (and comma-separated values) into a flat slice.
func SplitMulti(vals []string) []string {
	var out []string
	for _, raw := range vals {
		for _, piece := range strings.Split(raw, ",") {
			part := strings.TrimSpace(piece)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

func parseInt(raw, key string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	return n, nil
}

func lastLiteralValue(vals []string) (string, bool) {
	flat := SplitMulti(vals)
	if len(flat) == 0 {
		return "", false
	}
	return flat[len(flat)-1], true
}

func trimSlice(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := values[:0]
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
