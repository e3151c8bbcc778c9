package termcolor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phyten/sigloc/internal/colorutil"
	"github.com/phyten/sigloc/internal/model"
)

// Scheme は端末の背景が暗いか明るいかです。色のコントラスト調整に使います。
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeDark
	SchemeLight
)

func (s Scheme) String() string {
	if s == SchemeLight {
		return "light"
	}
	return "dark"
}

// DetectScheme は SIGLOC_THEME, COLORFGBG, TERM の順に背景を推定します。
// 何も分からなければ dark とみなします。
func DetectScheme(env map[string]string) Scheme {
	if env == nil {
		return SchemeDark
	}
	switch strings.ToLower(strings.TrimSpace(env["SIGLOC_THEME"])) {
	case "light":
		return SchemeLight
	case "dark":
		return SchemeDark
	}
	if raw := strings.TrimSpace(env["COLORFGBG"]); raw != "" {
		parts := strings.Split(raw, ";")
		bgRaw := strings.TrimSpace(parts[len(parts)-1])
		if bgRaw == "" && len(parts) >= 2 {
			bgRaw = strings.TrimSpace(parts[len(parts)-2])
		}
		if bg, err := strconv.Atoi(bgRaw); err == nil && bg >= 0 {
			if bg >= 7 {
				return SchemeLight
			}
			return SchemeDark
		}
	}
	if strings.Contains(strings.ToLower(env["TERM"]), "light") {
		return SchemeLight
	}
	return SchemeDark
}

// Style は SGR 属性と前景色の組です。前景色は FGTrue, FG256, FGBasic の順に
// 最初に設定されているものを使います。
type Style struct {
	Bold      bool
	Underline bool
	Dim       bool
	FGBasic   *int
	FG256     *int
	FGTrue    *[3]uint8
}

// IsZero reports whether s would emit no escape sequence.
func (s Style) IsZero() bool {
	return !s.Bold && !s.Underline && !s.Dim && s.FGBasic == nil && s.FG256 == nil && s.FGTrue == nil
}

// Render wraps text in the style's SGR sequence and a reset.
func (s Style) Render(text string) string {
	if text == "" || s.IsZero() {
		return text
	}
	var b strings.Builder
	b.WriteString("\x1b[")
	sep := ""
	attr := func(code string) {
		b.WriteString(sep)
		b.WriteString(code)
		sep = ";"
	}
	for _, a := range []struct {
		on   bool
		code string
	}{{s.Bold, "1"}, {s.Dim, "2"}, {s.Underline, "4"}} {
		if a.on {
			attr(a.code)
		}
	}
	switch {
	case s.FGTrue != nil:
		attr(fmt.Sprintf("38;2;%d;%d;%d", s.FGTrue[0], s.FGTrue[1], s.FGTrue[2]))
	case s.FG256 != nil:
		attr("38;5;" + strconv.Itoa(*s.FG256))
	case s.FGBasic != nil:
		attr("3" + strconv.Itoa(*s.FGBasic))
	}
	b.WriteString("m")
	b.WriteString(text)
	b.WriteString("\x1b[0m")
	return b.String()
}

var codeRGB = colorutil.RGB{R: 74, G: 222, B: 128}

// KindStyle は code/comment/blank の集計列に使う色です。
func KindStyle(kind model.LineKind, scheme Scheme, profile Profile) Style {
	switch kind {
	case model.LineCode:
		if profile == ProfileBasic8 {
			green := 2
			return Style{FGBasic: &green}
		}
		return rgbStyle(readable(codeRGB, scheme), profile)
	case model.LineComment:
		return DimStyle()
	default:
		return DimStyle()
	}
}
