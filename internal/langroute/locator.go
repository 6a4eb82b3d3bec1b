package langroute

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
)

// Locator decides which file serves a language's index or page. localized
// reports whether a language-specific variant was found.
type Locator interface {
	Index(lang i18n.Language) (target string, localized bool)
	Page(lang i18n.Language, name string) (target string, localized bool)
}

// SourceLocator is implemented by locators that can serve uncompiled page
// sources for requests without a language prefix.
type SourceLocator interface {
	// Source returns the source path of a known page if it exists.
	Source(name string) (target string, ok bool)
	// IsSourcePath reports whether a site-rooted path already points into
	// the page sources.
	IsSourcePath(path string) bool
}

// fileExists reports whether path is a regular file. Any stat error counts as
// missing.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DevLocator serves page sources straight from the project tree. Localised
// content is applied by the page runtime, so every language shares the same
// source file and nothing it returns counts as localized.
type DevLocator struct {
	root     string
	pagesDir string
	base     string
	simple   bool
	exists   func(string) bool
}

// NewDevLocator creates a locator over root, with page sources under
// pagesDir (relative to root, e.g. "src/pages"). WithProbeCache is ignored:
// sources change while the dev server runs.
func NewDevLocator(root, pagesDir, base string, opts ...Option) *DevLocator {
	o := applyOptions(opts)
	return &DevLocator{
		root:     root,
		pagesDir: strings.Trim(pagesDir, "/"),
		base:     base,
		simple:   o.simpleIndex,
		exists:   fileExists,
	}
}

// Index targets the canonical index source, or simple-index.html when the
// simple landing page is enabled and present.
func (l *DevLocator) Index(i18n.Language) (string, bool) {
	if l.simple && l.exists(filepath.Join(l.root, SimpleIndexPage+".html")) {
		return joinBase(l.base, SimpleIndexPage+".html"), false
	}
	return joinBase(l.base, "index.html"), false
}

// Page prefers the page source and falls back to the flat compiled name.
func (l *DevLocator) Page(_ i18n.Language, name string) (string, bool) {
	if target, ok := l.Source(name); ok {
		return target, false
	}
	return joinBase(l.base, name+".html"), false
}

// Source returns <base><pagesDir>/<name>.html when the file exists on disk.
func (l *DevLocator) Source(name string) (string, bool) {
	rel := l.pagesDir + "/" + name + ".html"
	if !l.exists(filepath.Join(l.root, filepath.FromSlash(rel))) {
		return "", false
	}
	return joinBase(l.base, rel), true
}

// IsSourcePath reports whether path lies under /<pagesDir>/.
func (l *DevLocator) IsSourcePath(path string) bool {
	return strings.HasPrefix(path, "/"+l.pagesDir+"/")
}

// SimpleIndexPage names the reduced landing page served in simple mode.
const SimpleIndexPage = "simple-index"

// Option configures a locator.
type Option func(*locatorOptions)

type locatorOptions struct {
	probeCache  bool
	simpleIndex bool
}

func applyOptions(opts []Option) locatorOptions {
	var o locatorOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithProbeCache memoises existence checks for the process lifetime. Only
// use it when the output directory does not change while serving.
func WithProbeCache() Option {
	return func(o *locatorOptions) { o.probeCache = true }
}

// WithSimpleIndex makes Index prefer simple-index.html over index.html.
func WithSimpleIndex() Option {
	return func(o *locatorOptions) { o.simpleIndex = true }
}

// DistLocator serves compiled output, probing for <lang>/<page>.html before
// falling back to the non-localized <page>.html.
type DistLocator struct {
	dir    string
	base   string
	simple bool
	exists func(string) bool
	cache  *sync.Map // rel path -> bool; nil disables caching
}

// NewDistLocator creates a locator over the compiled output directory.
func NewDistLocator(dir, base string, opts ...Option) *DistLocator {
	o := applyOptions(opts)
	l := &DistLocator{dir: dir, base: base, simple: o.simpleIndex, exists: fileExists}
	if o.probeCache {
		l.cache = &sync.Map{}
	}
	return l
}

// Index targets <lang>/index.html when present, else index.html. In simple
// mode <lang>/simple-index.html and simple-index.html are tried first.
func (l *DistLocator) Index(lang i18n.Language) (string, bool) {
	if l.simple {
		if rel := string(lang) + "/" + SimpleIndexPage + ".html"; l.has(rel) {
			return joinBase(l.base, rel), true
		}
		if rel := SimpleIndexPage + ".html"; l.has(rel) {
			return joinBase(l.base, rel), false
		}
	}
	return l.Page(lang, "index")
}

// Page targets <lang>/<name>.html when present, else <name>.html.
func (l *DistLocator) Page(lang i18n.Language, name string) (string, bool) {
	rel := string(lang) + "/" + name + ".html"
	if l.has(rel) {
		return joinBase(l.base, rel), true
	}
	return joinBase(l.base, name+".html"), false
}

func (l *DistLocator) has(rel string) bool {
	if l.cache != nil {
		if v, ok := l.cache.Load(rel); ok {
			return v.(bool)
		}
	}
	ok := l.exists(filepath.Join(l.dir, filepath.FromSlash(rel)))
	if l.cache != nil {
		l.cache.Store(rel, ok)
	}
	return ok
}
