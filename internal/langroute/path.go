// Package langroute maps language-prefixed request paths onto the files that
// serve them, for both the development server and the production preview.
package langroute

import "strings"

// NormalizePath strips base from raw and guarantees a leading slash. A base of
// "" or "/" leaves raw untouched apart from the slash. Paths outside base are
// returned as they are.
func NormalizePath(raw, base string) string {
	p := raw
	if base != "" && base != "/" {
		trimmed := strings.TrimSuffix(base, "/")
		switch {
		case p == trimmed:
			p = "/"
		case strings.HasPrefix(p, trimmed+"/"):
			p = p[len(trimmed):]
		}
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// joinBase prefixes a site-relative file path with base.
func joinBase(base, rel string) string {
	if base == "" {
		base = "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return base + strings.TrimPrefix(rel, "/")
}
