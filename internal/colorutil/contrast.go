// Package colorutil は端末配色のための RGB 計算（WCAG コントラスト比と線形補間）を提供します。
package colorutil

import "math"

type RGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
)

// 既定の背景色。COLORFGBG などで判定した配色に対応します。
var (
	DarkBackground  = RGB{17, 24, 39}
	LightBackground = RGB{249, 250, 251}
)

// MinContrast は本文テキストに要求する WCAG AA の比率です。
const MinContrast = 4.5

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func luminance(rgb RGB) float64 {
	r := srgbToLinear(float64(rgb.R) / 255.0)
	g := srgbToLinear(float64(rgb.G) / 255.0)
	b := srgbToLinear(float64(rgb.B) / 255.0)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func ContrastRatio(fg, bg RGB) float64 {
	l1 := luminance(fg)
	l2 := luminance(bg)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// Mix は a から b へ t (0..1) の位置で線形補間します。
func Mix(a, b RGB, t float64) RGB {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return RGB{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B)}
}

// EnsureContrast は fg が bg に対して minRatio を満たすまで前景色を
// 黒または白（bg と反対側）へ少しずつ寄せます。
func EnsureContrast(fg, bg RGB, minRatio float64) RGB {
	if minRatio <= 0 {
		minRatio = MinContrast
	}
	if ContrastRatio(fg, bg) >= minRatio {
		return fg
	}
	target := White
	if luminance(bg) > 0.5 {
		target = Black
	}
	for step := 1; step <= 10; step++ {
		candidate := Mix(fg, target, float64(step)/10)
		if ContrastRatio(candidate, bg) >= minRatio {
			return candidate
		}
	}
	return target
}
