package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// CookieName persists the visitor's last selected language.
const CookieName = "pdfsite-lang"

// Signals carries the request inputs consulted by Detector.
type Signals struct {
	Path           string // site-rooted path, base already stripped
	Cookie         string // value of CookieName, if any
	Country        string // CDN-provided ISO country code, if any
	AcceptLanguage string
}

// Detector determines the active language of a request.
type Detector struct {
	matcher      *Matcher
	def          Language
	negotiate    bool
	tagMatcher   language.Matcher
	tagLanguages []Language
}

// NewDetector builds a detector over m's whitelist. When negotiate is false only
// the URL prefix and cookie are consulted, mirroring the browser behaviour.
func NewDetector(m *Matcher, def Language, negotiate bool) *Detector {
	d := &Detector{matcher: m, def: def, negotiate: negotiate}
	langs := m.Languages()
	// The default goes first so it wins on low-confidence matches.
	tags := []language.Tag{language.Make(string(def))}
	d.tagLanguages = []Language{def}
	for _, l := range langs {
		if l == def {
			continue
		}
		tags = append(tags, language.Make(string(l)))
		d.tagLanguages = append(d.tagLanguages, l)
	}
	d.tagMatcher = language.NewMatcher(tags)
	return d
}

// Default returns the language served without a prefix.
func (d *Detector) Default() Language {
	return d.def
}

// Detect determines the active language based on priority:
//  1. Language prefix in the URL path
//  2. Persisted cookie
//  3. CDN country header (when negotiation is enabled)
//  4. Accept-Language (when negotiation is enabled)
//  5. Default language
func (d *Detector) Detect(s Signals) Language {
	if lang, _, ok := d.matcher.Match(s.Path); ok {
		return lang
	}
	if c := strings.TrimSpace(s.Cookie); c != "" && Contains(d.matcher.langs, c) {
		return Language(c)
	}

	if !d.negotiate {
		return d.def
	}

	if s.Country != "" {
		if lang, ok := CountryToLanguage(s.Country); ok && Contains(d.matcher.langs, string(lang)) {
			return lang
		}
	}

	if accept := strings.TrimSpace(s.AcceptLanguage); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, conf := d.tagMatcher.Match(tags...)
			if conf != language.No && idx >= 0 && idx < len(d.tagLanguages) {
				return d.tagLanguages[idx]
			}
		}
	}

	return d.def
}
