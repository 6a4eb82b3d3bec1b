// Package linkrewrite injects the active language prefix into in-site links.
package linkrewrite

import (
	"regexp"
	"strings"

	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
)

// Options describes the page being rewritten.
type Options struct {
	Language i18n.Language // active language
	Default  i18n.Language // language served without a prefix
	BasePath string        // "/" or "/sub/"
	Matcher  *i18n.Matcher
	// SetHTMLLang also sets <html lang> on full documents.
	SetHTMLLang bool
}

// Active reports whether links need rewriting at all.
func (o Options) Active() bool {
	return o.Language != "" && o.Language != o.Default && o.Matcher != nil
}

func (o Options) base() string {
	if o.BasePath == "" {
		return "/"
	}
	return o.BasePath
}

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)

// RewriteHref returns href with the active language injected after the base
// path, and whether it changed. Links it cannot classify are returned as-is.
func RewriteHref(href string, opts Options) (string, bool) {
	if !opts.Active() {
		return href, false
	}
	h := strings.TrimSpace(href)
	switch {
	case h == "",
		strings.HasPrefix(h, "#"),
		strings.HasPrefix(h, "?"),
		strings.HasPrefix(h, "//"),
		schemeRe.MatchString(h): // http:, mailto:, tel:, javascript:, data:, ...
		return href, false
	}

	pathPart, suffix := splitSuffix(h)

	base := opts.base()
	if !strings.HasPrefix(pathPart, "/") {
		for strings.HasPrefix(pathPart, "./") {
			pathPart = pathPart[2:]
		}
		if pathPart == "." {
			pathPart = ""
		}
		if strings.HasPrefix(pathPart, "../") || pathPart == ".." {
			return href, false
		}
		pathPart = base + pathPart
	}

	if strings.Contains(pathPart+"/", "/assets/") {
		return href, false
	}
	if opts.Matcher.HasPrefix(pathPart, base) {
		return href, false
	}

	rest := stripBase(pathPart, base)
	out := strings.TrimSuffix(base, "/") + "/" + string(opts.Language) + rest
	out = CollapseSlashes(out) + suffix
	return out, out != href
}

// splitSuffix separates the path from its query and fragment.
func splitSuffix(h string) (string, string) {
	if i := strings.IndexAny(h, "?#"); i >= 0 {
		return h[:i], h[i:]
	}
	return h, ""
}

// stripBase removes base from p, always returning a path with a leading slash.
func stripBase(p, base string) string {
	if base != "/" {
		trimmed := strings.TrimSuffix(base, "/")
		switch {
		case p == trimmed:
			return "/"
		case strings.HasPrefix(p, trimmed+"/"):
			return p[len(trimmed):]
		}
	}
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

// CollapseSlashes replaces runs of "/" with a single slash, except for the
// "//" that follows a scheme's colon.
func CollapseSlashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '/' && i > 0 && s[i-1] == '/' {
			// Keep "://" intact.
			if i >= 2 && s[i-2] == ':' {
				b.WriteByte(c)
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
