// Package i18n provides the site's language whitelist, prefix matching and
// active-language detection.
package i18n

import (
	"fmt"
	"strings"
)

// Language is a supported site language code, used verbatim as the URL prefix.
type Language string

const (
	LangEN   Language = "en" // English (default)
	LangDE   Language = "de" // German
	LangES   Language = "es" // Spanish
	LangFR   Language = "fr" // French
	LangIT   Language = "it" // Italian
	LangPT   Language = "pt" // Portuguese
	LangNL   Language = "nl" // Dutch
	LangTR   Language = "tr" // Turkish
	LangVI   Language = "vi" // Vietnamese
	LangID   Language = "id" // Indonesian
	LangZH   Language = "zh" // Simplified Chinese
	LangZHTW Language = "zh-TW"
)

// DefaultLanguage is served without a URL prefix.
const DefaultLanguage = LangEN

// AllLanguages is the built-in whitelist, in match order.
var AllLanguages = []Language{
	LangEN, LangDE, LangES, LangFR, LangIT, LangPT,
	LangNL, LangTR, LangVI, LangID, LangZH, LangZHTW,
}

// LanguageName returns the human-readable display name of a language.
func LanguageName(lang Language) string {
	switch lang {
	case LangEN:
		return "English"
	case LangDE:
		return "Deutsch"
	case LangES:
		return "Español"
	case LangFR:
		return "Français"
	case LangIT:
		return "Italiano"
	case LangPT:
		return "Português"
	case LangNL:
		return "Nederlands"
	case LangTR:
		return "Türkçe"
	case LangVI:
		return "Tiếng Việt"
	case LangID:
		return "Bahasa Indonesia"
	case LangZH:
		return "简体中文"
	case LangZHTW:
		return "繁體中文"
	default:
		return string(lang)
	}
}

// Contains reports whether lang is an exact member of langs.
func Contains(langs []Language, lang string) bool {
	for _, l := range langs {
		if Language(lang) == l {
			return true
		}
	}
	return false
}

// ParseLanguages splits a comma-separated list and validates each code against
// allowed. Unknown codes are an error; the input order is kept.
func ParseLanguages(s string, allowed []Language) ([]Language, error) {
	var langs []Language
	seen := make(map[Language]bool)
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !Contains(allowed, p) {
			return nil, fmt.Errorf("unsupported language %q", p)
		}
		if seen[Language(p)] {
			continue
		}
		seen[Language(p)] = true
		langs = append(langs, Language(p))
	}
	return langs, nil
}
