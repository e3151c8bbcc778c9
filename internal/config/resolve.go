package config

import (
	"strings"

	"github.com/phyten/sigloc/internal/detect"
	"github.com/phyten/sigloc/internal/lang"
)

// レイヤーの値が nil なら「未指定」で、下のレイヤーの値を残します。

func override[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func overrideTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// overrideList は空リストの指定を「下のレイヤーの値を消す」と解釈します。
func overrideList(dst *[]string, v *[]string) {
	if v == nil {
		return
	}
	if len(*v) == 0 {
		*dst = []string{}
		return
	}
	*dst = cloneStrings(*v)
}

// overrideLang canonicalises aliases ("py", "c++") so every layer compares
// equal to what the registry reports.
func overrideLang(dst *string, v *string) {
	if v != nil {
		*dst = string(lang.Parse(*v))
	}
}

func overrideLangList(dst *[]string, v *[]string) {
	if v == nil {
		return
	}
	*dst = detect.CanonicalDetectLangs(cloneStrings(*v))
	if *dst == nil {
		*dst = []string{}
	}
}

// overridePolicy は小文字に揃えるだけで、値の検証は Validate に任せます。
func overridePolicy(dst *string, v *string) {
	if v != nil {
		*dst = strings.ToLower(strings.TrimSpace(*v))
	}
}
