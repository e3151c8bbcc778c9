package lang

import (
	"errors"
	"fmt"
	"strings"
)

// Language は言語タグ（正規化済みの小文字名）を表します。
type Language string

const (
	C               Language = "c"
	CPP             Language = "cpp"
	ObjectiveC      Language = "objective-c"
	Java            Language = "java"
	CSharp          Language = "csharp"
	Kotlin          Language = "kotlin"
	Scala           Language = "scala"
	Swift           Language = "swift"
	Go              Language = "go"
	Rust            Language = "rust"
	Dart            Language = "dart"
	JavaScript      Language = "javascript"
	JavaScriptReact Language = "javascriptreact"
	TypeScript      Language = "typescript"
	TypeScriptReact Language = "typescriptreact"
	Python          Language = "python"
	Ruby            Language = "ruby"
	Shell           Language = "shell"
	Perl            Language = "perl"
	SQL             Language = "sql"
	Haskell         Language = "haskell"
	Lua             Language = "lua"
	HTML            Language = "html"
	XML             Language = "xml"
	CSS             Language = "css"
	TOML            Language = "toml"
	YAML            Language = "yaml"
)

// ErrUnsupportedLanguage is returned (wrapped) when no rule is registered for a tag.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UnsupportedLanguageError carries the tag that failed lookup.
type UnsupportedLanguageError struct {
	Name string
}

func (e *UnsupportedLanguageError) Error() string {
	if e.Name == "" {
		return "unsupported language: (empty)"
	}
	return fmt.Sprintf("unsupported language: %s", e.Name)
}

func (e *UnsupportedLanguageError) Unwrap() error { return ErrUnsupportedLanguage }

var aliases = map[string]Language{
	"h":                C,
	"c++":              CPP,
	"cc":               CPP,
	"cxx":              CPP,
	"hpp":              CPP,
	"objc":             ObjectiveC,
	"objectivec":       ObjectiveC,
	"c#":               CSharp,
	"cs":               CSharp,
	"kt":               Kotlin,
	"kts":              Kotlin,
	"golang":           Go,
	"rs":               Rust,
	"js":               JavaScript,
	"node":             JavaScript,
	"jsx":              JavaScriptReact,
	"javascript-react": JavaScriptReact,
	"ts":               TypeScript,
	"tsx":              TypeScriptReact,
	"typescript-react": TypeScriptReact,
	"py":               Python,
	"python3":          Python,
	"rb":               Ruby,
	"sh":               Shell,
	"bash":             Shell,
	"zsh":              Shell,
	"pl":               Perl,
	"hs":               Haskell,
	"htm":              HTML,
	"yml":              YAML,
}

// Parse は言語名を正規化します。エイリアス（c++, py, rs など）も受け付けます。
// 登録済みかどうかは確認しないため、存在確認は Registry.RulesFor で行ってください。
func Parse(name string) Language {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return ""
	}
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return Language(key)
}

func (l Language) String() string { return string(l) }
