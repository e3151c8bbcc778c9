// Package textutil は表出力のための表示幅計算（東アジア幅と書記素クラスタ対応）を提供します。
package textutil

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// ANSI escape sequences (covers common CSI and OSC forms).
var ansiRe = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)

// StripANSI removes color and hyperlink escapes.
func StripANSI(s string) string {
	if s == "" || !strings.ContainsRune(s, 0x1b) {
		return s
	}
	return ansiRe.ReplaceAllString(s, "")
}

// VisibleWidth returns terminal display width (wcwidth-based).
func VisibleWidth(s string) int {
	if s == "" {
		return 0
	}
	width := 0
	for _, seg := range graphemes(StripANSI(s)) {
		width += runewidth.StringWidth(seg)
	}
	return width
}

func graphemes(s string) []string {
	g := uniseg.NewGraphemes(s)
	out := make([]string, 0, len(s))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// TruncateByWidth は書記素を壊さずに s を幅 w に収めます。切り詰めた場合は
// 収まる限り末尾に ellipsis を付けます。
func TruncateByWidth(s string, w int, ellipsis string) string {
	if s == "" || w <= 0 {
		return ""
	}
	if VisibleWidth(s) <= w {
		return s
	}
	segs := graphemes(StripANSI(s))
	return fit(segs, w, ellipsis, false)
}

// TruncateLeftByWidth は先頭側を削ります。長いパスの末尾（ファイル名）を残すのに使います。
func TruncateLeftByWidth(s string, w int, ellipsis string) string {
	if s == "" || w <= 0 {
		return ""
	}
	if VisibleWidth(s) <= w {
		return s
	}
	segs := graphemes(StripANSI(s))
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return fit(segs, w, ellipsis, true)
}

// fit は segs を先頭から w まで詰め、ellipsis 分の幅を空けます。
// reversed のときは segs が逆順に並んでいるので、結果を戻して ellipsis を前に付けます。
func fit(segs []string, w int, ellipsis string, reversed bool) string {
	ellW := runewidth.StringWidth(ellipsis)
	if ellW > w {
		ellipsis, ellW = "", 0
	}
	budget := w - ellW
	kept := make([]string, 0, len(segs))
	used := 0
	for _, seg := range segs {
		segW := runewidth.StringWidth(seg)
		if used+segW > budget {
			break
		}
		kept = append(kept, seg)
		used += segW
	}
	if reversed {
		for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
			kept[i], kept[j] = kept[j], kept[i]
		}
		return ellipsis + strings.Join(kept, "")
	}
	return strings.Join(kept, "") + ellipsis
}

// PadRight pads s on the right with spaces so that the visible width equals w.
func PadRight(s string, w int) string {
	pad := w - VisibleWidth(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}

// PadLeft pads s on the left with spaces so that the visible width equals w.
func PadLeft(s string, w int) string {
	pad := w - VisibleWidth(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
