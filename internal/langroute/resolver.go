package langroute

import (
	"strings"

	"github.com/RobinCoderZhao/pdfsite/internal/pages"
	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
)

// Kind classifies a routing decision.
type Kind int

const (
	PassThrough Kind = iota
	Redirect
	LocalizedIndex
	LocalizedPage
	FallbackPage
)

func (k Kind) String() string {
	switch k {
	case PassThrough:
		return "pass_through"
	case Redirect:
		return "redirect"
	case LocalizedIndex:
		return "localized_index"
	case LocalizedPage:
		return "localized_page"
	case FallbackPage:
		return "fallback_page"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Decision is the per-request routing outcome. It is never persisted.
type Decision struct {
	Kind     Kind          `json:"kind"`
	Language i18n.Language `json:"language,omitempty"` // empty when no prefix matched
	Page     string        `json:"page,omitempty"`
	// Target is the rewritten path, base included. For PassThrough it is the
	// incoming path unchanged.
	Target string `json:"target,omitempty"`
	// Location is set for Redirect only and already carries the query.
	Location string `json:"location,omitempty"`
	// Localized reports whether a language-specific file was selected.
	Localized bool `json:"localized"`
}

// RequestURI returns Target with rawQuery reattached.
func (d Decision) RequestURI(rawQuery string) string {
	if rawQuery == "" {
		return d.Target
	}
	return d.Target + "?" + rawQuery
}

// Config holds the immutable inputs of a Resolver.
type Config struct {
	Matcher  *i18n.Matcher
	Pages    *pages.Catalog
	Locator  Locator
	BasePath string
}

// Resolver turns request paths into routing decisions. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	matcher *i18n.Matcher
	pages   *pages.Catalog
	locator Locator
	base    string
}

// NewResolver creates a resolver from cfg.
func NewResolver(cfg Config) *Resolver {
	m := cfg.Matcher
	if m == nil {
		m = i18n.NewMatcher(nil)
	}
	return &Resolver{
		matcher: m,
		pages:   cfg.Pages,
		locator: cfg.Locator,
		base:    cfg.BasePath,
	}
}

// BasePath returns the configured base path.
func (r *Resolver) BasePath() string {
	return r.base
}

// Matcher returns the language matcher.
func (r *Resolver) Matcher() *i18n.Matcher {
	return r.matcher
}

// Resolve computes the decision for rawPath. It never fails: anything it does
// not recognise passes through to the file server.
func (r *Resolver) Resolve(rawPath, rawQuery string) Decision {
	norm := NormalizePath(rawPath, r.base)

	lang, rest, ok := r.matcher.Match(norm)
	if !ok {
		return r.resolveUnprefixed(rawPath, norm)
	}

	// "/<lang>" becomes "/<lang>/".
	if rest == "" && !strings.HasSuffix(rawPath, "/") {
		loc := rawPath + "/"
		if rawQuery != "" {
			loc += "?" + rawQuery
		}
		return Decision{Kind: Redirect, Language: lang, Location: loc}
	}

	if rest == "" || rest == "/" {
		target, localized := r.locator.Index(lang)
		kind := FallbackPage
		if localized {
			kind = LocalizedIndex
		}
		return Decision{
			Kind:      kind,
			Language:  lang,
			Page:      "index",
			Target:    target,
			Localized: localized,
		}
	}

	stripped := strings.TrimSuffix(rest, "/")
	stripped = strings.TrimSuffix(stripped, ".html")
	candidate := stripped
	if i := strings.Index(candidate, "/"); i >= 0 {
		candidate = candidate[:i]
	}

	switch {
	case r.pages.Has(candidate):
		return r.page(lang, candidate)
	case stripped != "" && !strings.Contains(stripped, "."):
		return r.page(lang, stripped)
	default:
		// Has an extension and is not a page: a static asset.
		return Decision{Kind: PassThrough, Language: lang, Target: rawPath}
	}
}

func (r *Resolver) page(lang i18n.Language, name string) Decision {
	target, localized := r.locator.Page(lang, name)
	kind := FallbackPage
	if localized {
		kind = LocalizedPage
	}
	return Decision{
		Kind:      kind,
		Language:  lang,
		Page:      name,
		Target:    target,
		Localized: localized,
	}
}

// resolveUnprefixed handles paths without a language segment. Only a source
// locator rewrites them, and only for known pages requested as "<page>.html".
func (r *Resolver) resolveUnprefixed(rawPath, norm string) Decision {
	pass := Decision{Kind: PassThrough, Target: rawPath}

	src, ok := r.locator.(SourceLocator)
	if !ok || !strings.HasSuffix(norm, ".html") || src.IsSourcePath(norm) {
		return pass
	}
	name := strings.TrimSuffix(strings.TrimPrefix(norm, "/"), ".html")
	if !r.pages.Has(name) {
		return pass
	}
	target, found := src.Source(name)
	if !found {
		return pass
	}
	return Decision{Kind: FallbackPage, Page: name, Target: target}
}
