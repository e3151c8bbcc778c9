package termcolor

import (
	"hash/fnv"
	"math"
	"strings"

	"github.com/phyten/sigloc/internal/colorutil"
)

func HeaderStyle() Style {
	return Style{Bold: true, Underline: true}
}

// DimStyle はコメント行や空行など、主役でない情報に使います。
func DimStyle() Style {
	return Style{Dim: true}
}

// 言語名の色相。名前のハッシュで選ぶので同じ言語は常に同じ色になります。
var langPalette = []struct {
	rgb   colorutil.RGB
	basic int
}{
	{colorutil.RGB{R: 96, G: 165, B: 250}, 4},
	{colorutil.RGB{R: 52, G: 211, B: 153}, 2},
	{colorutil.RGB{R: 251, G: 191, B: 36}, 3},
	{colorutil.RGB{R: 244, G: 114, B: 182}, 5},
	{colorutil.RGB{R: 34, G: 211, B: 238}, 6},
	{colorutil.RGB{R: 248, G: 113, B: 113}, 1},
}

// LangStyle は言語名の列に使う色を返します。
func LangStyle(name string, scheme Scheme, profile Profile) Style {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Style{}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	entry := langPalette[int(h.Sum32()%uint32(len(langPalette)))]
	if profile == ProfileBasic8 {
		color := entry.basic
		return Style{FGBasic: &color}
	}
	return rgbStyle(readable(entry.rgb, scheme), profile)
}

// RatioStyle はコード比率 (0..1) を赤→黄→緑のグラデーションで表します。
// 比率が高いほど緑に近づきます。
func RatioStyle(ratio float64, scheme Scheme, profile Profile) Style {
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	if profile == ProfileBasic8 {
		color := ratioBucketColor(ratio)
		return Style{FGBasic: &color}
	}
	return rgbStyle(readable(gradientRGB(ratio), scheme), profile)
}

func rgbStyle(c colorutil.RGB, profile Profile) Style {
	if profile == ProfileTrueColor {
		rgb := [3]uint8{c.R, c.G, c.B}
		return Style{FGTrue: &rgb}
	}
	idx := rgbToANSI256(c.R, c.G, c.B)
	return Style{FG256: &idx}
}

// readable は背景色に対して WCAG AA を満たすよう前景色を調整します。
func readable(c colorutil.RGB, scheme Scheme) colorutil.RGB {
	bg := colorutil.DarkBackground
	if scheme == SchemeLight {
		bg = colorutil.LightBackground
	}
	return colorutil.EnsureContrast(c, bg, colorutil.MinContrast)
}

var (
	gradientLow  = colorutil.RGB{R: 239, G: 68, B: 68}
	gradientMid  = colorutil.RGB{R: 234, G: 179, B: 8}
	gradientHigh = colorutil.RGB{R: 34, G: 197, B: 94}
)

func gradientRGB(t float64) colorutil.RGB {
	if t < 0.5 {
		return colorutil.Mix(gradientLow, gradientMid, t/0.5)
	}
	return colorutil.Mix(gradientMid, gradientHigh, (t-0.5)/0.5)
}

func ratioBucketColor(ratio float64) int {
	switch {
	case ratio >= 0.75:
		return 2
	case ratio >= 0.5:
		return 3
	case ratio >= 0.25:
		return 5
	default:
		return 1
	}
}

func rgbToANSI256(r, g, b uint8) int {
	if r == g && g == b {
		if r < 8 {
			return 16
		}
		if r > 248 {
			return 231
		}
		return 232 + (int(r)-8)*24/247
	}
	rr := int(r) * 5 / 255
	gg := int(g) * 5 / 255
	bb := int(b) * 5 / 255
	return 16 + 36*rr + 6*gg + bb
}
