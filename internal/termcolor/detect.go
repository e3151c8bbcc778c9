// Package termcolor decides whether and how sigloc colors its tables.
package termcolor

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Mode は --color / SIGLOC_COLOR の値です。
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeAlways Mode = "always"
	ModeNever  Mode = "never"
)

// ParseMode accepts auto, always and never in any case. Empty means auto.
func ParseMode(v string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(v))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeAlways, ModeNever:
		return m, nil
	default:
		return ModeAuto, fmt.Errorf("unknown color mode: %s (want auto|always|never)", v)
	}
}

// Profile is how many colors the terminal can show.
type Profile int

const (
	ProfileBasic8 Profile = iota
	ProfileANSI256
	ProfileTrueColor
)

func (p Profile) String() string {
	switch p {
	case ProfileTrueColor:
		return "truecolor"
	case ProfileANSI256:
		return "256"
	default:
		return "8"
	}
}

// EnvMap turns os.Environ-style entries into a map. Later entries win.
func EnvMap(values []string) map[string]string {
	env := make(map[string]string, len(values))
	for _, entry := range values {
		if entry == "" {
			continue
		}
		k, v, _ := strings.Cut(entry, "=")
		env[k] = v
	}
	return env
}

// envOverrides は auto のときに TTY 判定より優先する環境変数です。上から順に見て、
// 最初に決まったものを使います。抑止系を強制系より先に置いています。
var envOverrides = []struct {
	key    string
	decide func(v string) (Mode, bool)
}{
	{"TERM", func(v string) (Mode, bool) { return ModeNever, strings.EqualFold(v, "dumb") }},
	{"NO_COLOR", func(v string) (Mode, bool) { return ModeNever, v != "" }},
	{"CLICOLOR", func(v string) (Mode, bool) { return ModeNever, v == "0" }},
	{"CLICOLOR_FORCE", func(v string) (Mode, bool) { return ModeAlways, v != "" && v != "0" }},
	{"FORCE_COLOR", func(v string) (Mode, bool) { return ModeAlways, v != "" && v != "0" }},
}

// DetectMode resolves auto to always or never from env, then from whether
// stdout is a terminal.
func DetectMode(stdout *os.File, env map[string]string) Mode {
	if stdout == nil {
		return ModeNever
	}
	for _, o := range envOverrides {
		if m, ok := o.decide(strings.TrimSpace(env[o.key])); ok {
			return m
		}
	}
	if isTerminal(stdout) {
		return ModeAlways
	}
	return ModeNever
}

// DetectProfile は COLORTERM, FORCE_COLOR=2/3, TERM の順に色数を推定します。
func DetectProfile(env map[string]string) Profile {
	colorterm := strings.ToLower(strings.TrimSpace(env["COLORTERM"]))
	for _, marker := range []string{"truecolor", "24bit", "24-bit"} {
		if strings.Contains(colorterm, marker) {
			return ProfileTrueColor
		}
	}
	switch strings.TrimSpace(env["FORCE_COLOR"]) {
	case "3":
		return ProfileTrueColor
	case "2":
		return ProfileANSI256
	}
	if strings.Contains(strings.ToLower(env["TERM"]), "256color") {
		return ProfileANSI256
	}
	return ProfileBasic8
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// Settings は出力時に使う色の設定一式です。ゼロ値は色なし。
type Settings struct {
	Enabled bool
	Profile Profile
	Scheme  Scheme
}

// Resolve は --color の値と環境変数から Settings を決めます。
func Resolve(mode string, stdout *os.File, env map[string]string) (Settings, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return Settings{}, err
	}
	if m == ModeAuto {
		m = DetectMode(stdout, env)
	}
	if m == ModeNever {
		return Settings{}, nil
	}
	return Settings{Enabled: true, Profile: DetectProfile(env), Scheme: DetectScheme(env)}, nil
}

// Paint applies style only when colors are enabled.
func (s Settings) Paint(style Style, text string) string {
	if !s.Enabled {
		return text
	}
	return style.Render(text)
}
