package detect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/phyten/sigloc/internal/lang"
)

// Detector はファイル名とシバン行から言語タグを推定します。
type Detector struct {
	basenames  map[string]lang.Language
	extensions map[string]lang.Language
}

var defaultDetector = &Detector{basenames: basenameLanguages, extensions: extensionLanguages}

// Default は組み込みの対応表だけを使う Detector を返します。
func Default() *Detector { return defaultDetector }

// New は組み込みの対応表に extra を重ねた Detector を返します。
// キーが "." で始まれば拡張子、それ以外はベース名として扱います。
func New(extra map[string]lang.Language) *Detector {
	if len(extra) == 0 {
		return defaultDetector
	}
	d := &Detector{
		basenames:  make(map[string]lang.Language, len(basenameLanguages)),
		extensions: make(map[string]lang.Language, len(extensionLanguages)+len(extra)),
	}
	for k, v := range basenameLanguages {
		d.basenames[k] = v
	}
	for k, v := range extensionLanguages {
		d.extensions[k] = v
	}
	for k, v := range extra {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if strings.HasPrefix(key, ".") {
			d.extensions[key] = lang.Parse(string(v))
		} else {
			d.basenames[key] = lang.Parse(string(v))
		}
	}
	return d
}

// FromPathAndContent は Default().Detect の省略形です。
func FromPathAndContent(p string, data []byte) lang.Language {
	return defaultDetector.Detect(p, data)
}

// Detect returns "" when nothing matches.
func (d *Detector) Detect(p string, data []byte) lang.Language {
	name := d.byPath(p)
	if name != "" {
		if strings.EqualFold(filepath.Ext(p), ".m") && name == lang.ObjectiveC && looksLikeMatlab(data) {
			return ""
		}
		return name
	}
	return detectByShebang(data)
}

func (d *Detector) byPath(p string) lang.Language {
	base := strings.ToLower(filepath.Base(p))
	if l, ok := d.basenames[base]; ok {
		return l
	}
	ext := filepath.Ext(base)
	if ext == "" {
		return ""
	}
	if l, ok := d.extensions[ext]; ok {
		return l
	}
	// foo.d.ts, Dockerfile.dev のような二重拡張子
	stem := strings.TrimSuffix(base, ext)
	if l, ok := d.extensions[filepath.Ext(stem)+ext]; ok {
		return l
	}
	if l, ok := d.basenames[stem]; ok {
		return l
	}
	return ""
}

func detectByShebang(data []byte) lang.Language {
	if !bytes.HasPrefix(data, []byte("#!")) {
		return ""
	}
	end := bytes.IndexByte(data, '\n')
	if end == -1 {
		end = len(data)
	}
	fields := strings.Fields(strings.ToLower(string(data[2:end])))
	if len(fields) == 0 {
		return ""
	}
	interp := filepath.Base(fields[0])
	if interp == "env" {
		for _, f := range fields[1:] {
			if !strings.HasPrefix(f, "-") {
				interp = f
				break
			}
		}
	}
	interp = strings.TrimRight(interp, "0123456789.")
	if l, ok := shebangLanguages[interp]; ok {
		return l
	}
	return ""
}

// MatchesLang は allow が空なら常に true、それ以外は正規化後に一致するかを返します。
func MatchesLang(l lang.Language, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	if l == "" {
		return false
	}
	for _, raw := range allow {
		if lang.Parse(raw) == l {
			return true
		}
	}
	return false
}

// CanonicalDetectLangs は言語名を正規化し、重複を除いて順序を保ちます。
func CanonicalDetectLangs(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	seen := make(map[lang.Language]struct{}, len(values))
	for _, raw := range values {
		norm := lang.Parse(raw)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, string(norm))
	}
	return out
}

func looksLikeMatlab(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	sawMatlabKeyword := false
	for _, line := range strings.Split(string(sample), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%") {
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.HasPrefix(lower, "@interface") || strings.HasPrefix(lower, "@implementation") || strings.HasPrefix(lower, "#import") {
			return false
		}
		if strings.HasPrefix(lower, "function") || strings.HasPrefix(lower, "classdef") {
			return true
		}
		if strings.HasPrefix(lower, "properties") || strings.HasPrefix(lower, "methods") {
			sawMatlabKeyword = true
		}
	}
	return sawMatlabKeyword
}

var basenameLanguages = map[string]lang.Language{
	"podfile":        lang.Ruby,
	"vagrantfile":    lang.Ruby,
	"gemfile":        lang.Ruby,
	"rakefile":       lang.Ruby,
	"berksfile":      lang.Ruby,
	"config.ru":      lang.Ruby,
	"gradlew":        lang.Shell,
	"pyproject.toml": lang.TOML,
	"cargo.toml":     lang.TOML,
	"cargo.lock":     lang.TOML,
	"pipfile":        lang.TOML,
	"setup.py":       lang.Python,
	"sconstruct":     lang.Python,
	"pom.xml":        lang.XML,
	".bashrc":        lang.Shell,
	".zshrc":         lang.Shell,
	".profile":       lang.Shell,
}

var extensionLanguages = map[string]lang.Language{
	".c":       lang.C,
	".h":       lang.C,
	".cc":      lang.CPP,
	".cp":      lang.CPP,
	".cpp":     lang.CPP,
	".cxx":     lang.CPP,
	".c++":     lang.CPP,
	".hh":      lang.CPP,
	".hpp":     lang.CPP,
	".hxx":     lang.CPP,
	".ino":     lang.CPP,
	".m":       lang.ObjectiveC,
	".mm":      lang.ObjectiveC,
	".java":    lang.Java,
	".cs":      lang.CSharp,
	".kt":      lang.Kotlin,
	".kts":     lang.Kotlin,
	".scala":   lang.Scala,
	".sc":      lang.Scala,
	".swift":   lang.Swift,
	".go":      lang.Go,
	".rs":      lang.Rust,
	".dart":    lang.Dart,
	".js":      lang.JavaScript,
	".mjs":     lang.JavaScript,
	".cjs":     lang.JavaScript,
	".jsx":     lang.JavaScriptReact,
	".ts":      lang.TypeScript,
	".mts":     lang.TypeScript,
	".cts":     lang.TypeScript,
	".d.ts":    lang.TypeScript,
	".tsx":     lang.TypeScriptReact,
	".py":      lang.Python,
	".pyw":     lang.Python,
	".pyi":     lang.Python,
	".rb":      lang.Ruby,
	".rake":    lang.Ruby,
	".gemspec": lang.Ruby,
	".sh":      lang.Shell,
	".bash":    lang.Shell,
	".zsh":     lang.Shell,
	".ksh":     lang.Shell,
	".pl":      lang.Perl,
	".pm":      lang.Perl,
	".t":       lang.Perl,
	".sql":     lang.SQL,
	".psql":    lang.SQL,
	".pgsql":   lang.SQL,
	".hs":      lang.Haskell,
	".lua":     lang.Lua,
	".html":    lang.HTML,
	".htm":     lang.HTML,
	".xhtml":   lang.HTML,
	".xml":     lang.XML,
	".svg":     lang.XML,
	".plist":   lang.XML,
	".xaml":    lang.XML,
	".csproj":  lang.XML,
	".css":     lang.CSS,
	".toml":    lang.TOML,
	".yaml":    lang.YAML,
	".yml":     lang.YAML,
}

var shebangLanguages = map[string]lang.Language{
	"python": lang.Python,
	"pypy":   lang.Python,
	"node":   lang.JavaScript,
	"deno":   lang.TypeScript,
	"perl":   lang.Perl,
	"ruby":   lang.Ruby,
	"bash":   lang.Shell,
	"sh":     lang.Shell,
	"zsh":    lang.Shell,
	"ksh":    lang.Shell,
	"dash":   lang.Shell,
	"lua":    lang.Lua,
	"swift":  lang.Swift,
}
