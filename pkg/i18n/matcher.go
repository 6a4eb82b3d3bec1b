package i18n

import (
	"regexp"
	"strings"
)

// Matcher recognises a leading language segment in a site-rooted path.
// It is built once from a fixed whitelist and is safe for concurrent use.
type Matcher struct {
	langs []Language
	re    *regexp.Regexp
}

// NewMatcher compiles ^/(l1|l2|...)(?:/(.*))?$ from langs in the given order.
// An empty whitelist yields a matcher that never matches.
func NewMatcher(langs []Language) *Matcher {
	m := &Matcher{langs: append([]Language(nil), langs...)}
	if len(langs) == 0 {
		return m
	}
	alts := make([]string, len(langs))
	for i, l := range langs {
		alts[i] = regexp.QuoteMeta(string(l))
	}
	m.re = regexp.MustCompile(`^/(` + strings.Join(alts, "|") + `)(?:/(.*))?$`)
	return m
}

// Languages returns a copy of the whitelist.
func (m *Matcher) Languages() []Language {
	return append([]Language(nil), m.langs...)
}

// Match extracts the language and the remainder after "/<lang>/".
// rest is empty for both "/<lang>" and "/<lang>/"; callers that care about the
// difference inspect the original path.
func (m *Matcher) Match(path string) (lang Language, rest string, ok bool) {
	if m.re == nil {
		return "", "", false
	}
	sub := m.re.FindStringSubmatch(path)
	if sub == nil {
		return "", "", false
	}
	return Language(sub[1]), sub[2], true
}

// HasPrefix reports whether path starts with a whitelisted language segment,
// optionally preceded by base.
func (m *Matcher) HasPrefix(path, base string) bool {
	if base != "" && base != "/" {
		trimmed := strings.TrimSuffix(base, "/")
		if strings.HasPrefix(path, trimmed+"/") {
			path = path[len(trimmed):]
		}
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	seg := path[1:]
	if i := strings.IndexAny(seg, "/?#"); i >= 0 {
		seg = seg[:i]
	}
	return Contains(m.langs, seg)
}
