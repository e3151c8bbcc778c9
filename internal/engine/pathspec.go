package engine

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var typicalExcludePatterns = []string{
	":(glob,exclude)vendor/**",
	":(glob,exclude)node_modules/**",
	":(glob,exclude)dist/**",
	":(glob,exclude)build/**",
	":(glob,exclude)target/**",
	":(glob,exclude)*.min.*",
}

// buildPathspecs builds the list to append after "--" for `git ls-files`.
func buildPathspecs(includes, excludes []string, typical bool) []string {
	normalizedIncludes := make([]string, 0, len(includes))
	for _, raw := range includes {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		normalizedIncludes = append(normalizedIncludes, filepath.ToSlash(trimmed))
	}

	out := make([]string, 0, len(normalizedIncludes)+len(excludes)+len(typicalExcludePatterns)+1)
	if len(normalizedIncludes) == 0 {
		out = append(out, ".")
	} else {
		out = append(out, normalizedIncludes...)
	}

	if typical {
		out = append(out, typicalExcludePatterns...)
	}

	for _, raw := range excludes {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		trimmed = filepath.ToSlash(trimmed)
		if isExcludeMagic(trimmed) {
			out = append(out, trimmed)
			continue
		}
		out = append(out, ":(glob,exclude)"+trimmed)
	}
	return out
}

func isExcludeMagic(s string) bool {
	return strings.HasPrefix(s, ":!") || strings.HasPrefix(s, ":(exclude)") || strings.HasPrefix(s, ":(glob,exclude)")
}

// stripMagic は pathspec の magic 接頭辞を取り除き、素の glob を返します。
func stripMagic(s string) string {
	switch {
	case strings.HasPrefix(s, ":!"):
		return s[2:]
	case strings.HasPrefix(s, ":("):
		if end := strings.IndexByte(s, ')'); end >= 0 {
			return s[end+1:]
		}
	}
	return s
}

// pathFilter は git を使わない走査で pathspec と同じ絞り込みを行います。
type pathFilter struct {
	includes []string
	excludes []string
}

func newPathFilter(includes, excludes []string, typical bool) pathFilter {
	var f pathFilter
	for _, raw := range includes {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || trimmed == "." {
			continue
		}
		f.includes = append(f.includes, strings.TrimSuffix(filepath.ToSlash(stripMagic(trimmed)), "/"))
	}
	if typical {
		for _, p := range typicalExcludePatterns {
			f.excludes = append(f.excludes, stripMagic(p))
		}
	}
	for _, raw := range excludes {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		f.excludes = append(f.excludes, filepath.ToSlash(stripMagic(trimmed)))
	}
	return f
}

// match は repo 相対の slash 区切りパスを判定します。
// include はディレクトリ接頭辞か glob、exclude は glob（ディレクトリ配下も含む）です。
func (f pathFilter) match(rel string) bool {
	if len(f.includes) > 0 {
		ok := false
		for _, inc := range f.includes {
			if rel == inc || strings.HasPrefix(rel, inc+"/") || globMatch(inc, rel) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, exc := range f.excludes {
		if strings.HasPrefix(rel, strings.TrimSuffix(exc, "/")+"/") || globMatch(exc, rel) {
			return false
		}
		if !strings.Contains(exc, "/") && globMatch(exc, path.Base(rel)) {
			return false
		}
	}
	return true
}

func globMatch(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

func compilePathRegex(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, raw := range patterns {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		rx, err := regexp.Compile(trimmed)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, rx)
	}
	return compiled, nil
}

// CompilePathRegex validates and compiles the provided path regex patterns.
func CompilePathRegex(patterns []string) ([]*regexp.Regexp, error) {
	return compilePathRegex(patterns)
}

func filterByPathRegex(files []string, rx []*regexp.Regexp) []string {
	if len(rx) == 0 {
		return files
	}
	out := files[:0]
	for _, f := range files {
		for _, r := range rx {
			if r.MatchString(f) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
