package langroute

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RobinCoderZhao/pdfsite/internal/pages"
	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
)

func touch(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newDistResolver(t *testing.T, base string, files ...string) *Resolver {
	t.Helper()
	dist := t.TempDir()
	for _, f := range files {
		touch(t, dist, f)
	}
	return NewResolver(Config{
		Matcher:  i18n.NewMatcher(i18n.AllLanguages),
		Pages:    pages.New("index", "merge-pdf", "split-pdf", "about"),
		Locator:  NewDistLocator(dist, base),
		BasePath: base,
	})
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		raw, base, want string
	}{
		{"/pdf/de/merge-pdf", "/pdf/", "/de/merge-pdf"},
		{"/pdf/", "/pdf/", "/"},
		{"/pdf", "/pdf/", "/"},
		{"/pdfx/de", "/pdf/", "/pdfx/de"},
		{"/de/merge-pdf", "/", "/de/merge-pdf"},
		{"/de/merge-pdf", "", "/de/merge-pdf"},
		{"de/merge-pdf", "", "/de/merge-pdf"},
		{"", "", "/"},
		{"/other/de", "/pdf/", "/other/de"},
	}
	for _, tt := range tests {
		if got := NormalizePath(tt.raw, tt.base); got != tt.want {
			t.Errorf("NormalizePath(%q, %q) = %q, want %q", tt.raw, tt.base, got, tt.want)
		}
	}
}

func TestResolve_Redirect(t *testing.T) {
	r := newDistResolver(t, "/")

	d := r.Resolve("/fr", "")
	if d.Kind != Redirect || d.Location != "/fr/" {
		t.Fatalf("expected redirect to /fr/, got %+v", d)
	}

	d = r.Resolve("/de", "utm=x&a=1")
	if d.Kind != Redirect || d.Location != "/de/?utm=x&a=1" {
		t.Fatalf("expected query preserved, got %+v", d)
	}
}

func TestResolve_RedirectWithBase(t *testing.T) {
	r := newDistResolver(t, "/pdf/")
	d := r.Resolve("/pdf/de", "")
	if d.Kind != Redirect || d.Location != "/pdf/de/" {
		t.Fatalf("expected redirect to /pdf/de/, got %+v", d)
	}
}

func TestResolve_Index(t *testing.T) {
	r := newDistResolver(t, "/", "de/index.html")

	d := r.Resolve("/de/", "")
	if d.Kind != LocalizedIndex || d.Target != "/de/index.html" || !d.Localized {
		t.Fatalf("expected localized index, got %+v", d)
	}

	d = r.Resolve("/fr/", "")
	if d.Kind != FallbackPage || d.Target != "/index.html" || d.Localized || d.Page != "index" {
		t.Fatalf("expected canonical index fallback, got %+v", d)
	}

	d = r.Resolve("/fr//", "")
	if d.Target != "/index.html" {
		t.Fatalf("expected rest '/' to resolve to index, got %+v", d)
	}
}

func TestResolve_KnownPageAllLanguages(t *testing.T) {
	var files []string
	for _, l := range i18n.AllLanguages {
		if l == i18n.LangFR {
			continue
		}
		files = append(files, string(l)+"/merge-pdf.html")
	}
	r := newDistResolver(t, "/", files...)

	for _, l := range i18n.AllLanguages {
		d := r.Resolve("/"+string(l)+"/merge-pdf", "")
		if l == i18n.LangFR {
			if d.Kind != FallbackPage || d.Target != "/merge-pdf.html" {
				t.Fatalf("%s: expected fallback, got %+v", l, d)
			}
			continue
		}
		want := "/" + string(l) + "/merge-pdf.html"
		if d.Kind != LocalizedPage || d.Target != want || d.Language != l || d.Page != "merge-pdf" {
			t.Fatalf("%s: expected %s, got %+v", l, want, d)
		}
	}
}

func TestResolve_BasePathScenario(t *testing.T) {
	r := newDistResolver(t, "/pdf/", "de/merge-pdf.html")
	d := r.Resolve("/pdf/de/merge-pdf", "")
	if d.Target != "/pdf/de/merge-pdf.html" || d.Language != i18n.LangDE {
		t.Fatalf("expected /pdf/de/merge-pdf.html, got %+v", d)
	}

	r = newDistResolver(t, "/pdf/")
	d = r.Resolve("/pdf/de/merge-pdf", "")
	if d.Target != "/pdf/merge-pdf.html" || d.Kind != FallbackPage {
		t.Fatalf("expected /pdf/merge-pdf.html, got %+v", d)
	}
}

func TestResolve_PageNameStripping(t *testing.T) {
	r := newDistResolver(t, "/", "de/merge-pdf.html")

	for _, p := range []string{"/de/merge-pdf/", "/de/merge-pdf.html", "/de/merge-pdf/extra"} {
		d := r.Resolve(p, "")
		if d.Target != "/de/merge-pdf.html" || d.Page != "merge-pdf" {
			t.Errorf("Resolve(%q) = %+v", p, d)
		}
	}
}

func TestResolve_ImplicitPage(t *testing.T) {
	r := newDistResolver(t, "/", "de/blog/welcome.html")

	d := r.Resolve("/de/blog/welcome", "")
	if d.Kind != LocalizedPage || d.Target != "/de/blog/welcome.html" {
		t.Fatalf("expected implicit localized page, got %+v", d)
	}

	d = r.Resolve("/de/unknown-tool", "")
	if d.Kind != FallbackPage || d.Target != "/unknown-tool.html" || d.Page != "unknown-tool" {
		t.Fatalf("expected implicit fallback page, got %+v", d)
	}
}

func TestResolve_AssetPassThrough(t *testing.T) {
	r := newDistResolver(t, "/")

	for _, p := range []string{"/de/assets/app.js", "/de/favicon.ico", "/de/images/logo.v2/x"} {
		d := r.Resolve(p, "")
		if d.Kind != PassThrough || d.Target != p {
			t.Errorf("Resolve(%q) = %+v, want pass-through", p, d)
		}
	}
}

func TestResolve_UnknownLanguage(t *testing.T) {
	r := newDistResolver(t, "/", "de/merge-pdf.html")

	withUnknown := r.Resolve("/xx/merge-pdf", "")
	plain := r.Resolve("/merge-pdf", "")
	if withUnknown.Kind != PassThrough || plain.Kind != PassThrough {
		t.Fatalf("expected pass-through, got %+v and %+v", withUnknown, plain)
	}
	if withUnknown.Language != "" || withUnknown.Target != "/xx/merge-pdf" {
		t.Fatalf("unknown language must be untouched, got %+v", withUnknown)
	}
}

func TestResolve_ProdIgnoresUnprefixedHTML(t *testing.T) {
	r := newDistResolver(t, "/")
	d := r.Resolve("/merge-pdf.html", "")
	if d.Kind != PassThrough || d.Target != "/merge-pdf.html" {
		t.Fatalf("expected pass-through in prod, got %+v", d)
	}
}

func newDevResolver(t *testing.T, base string, files ...string) *Resolver {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		touch(t, root, f)
	}
	return NewResolver(Config{
		Matcher:  i18n.NewMatcher(i18n.AllLanguages),
		Pages:    pages.New("index", "merge-pdf", "split-pdf", "about"),
		Locator:  NewDevLocator(root, "src/pages", base),
		BasePath: base,
	})
}

func TestResolve_Dev(t *testing.T) {
	r := newDevResolver(t, "/", "index.html", "src/pages/merge-pdf.html", "about.html")

	d := r.Resolve("/de/", "")
	if d.Kind != FallbackPage || d.Target != "/index.html" || d.Localized {
		t.Fatalf("dev index must be canonical, got %+v", d)
	}

	// Sources are shared by every language.
	d = r.Resolve("/de/merge-pdf", "")
	if d.Target != "/src/pages/merge-pdf.html" || d.Kind != FallbackPage || d.Localized {
		t.Fatalf("expected page source, got %+v", d)
	}

	d = r.Resolve("/de/about", "")
	if d.Target != "/about.html" || d.Kind != FallbackPage {
		t.Fatalf("expected flat root page, got %+v", d)
	}
}

func TestResolve_DevUnprefixedSource(t *testing.T) {
	r := newDevResolver(t, "/pdf/", "src/pages/merge-pdf.html")

	d := r.Resolve("/pdf/merge-pdf.html", "")
	if d.Kind != FallbackPage || d.Target != "/pdf/src/pages/merge-pdf.html" {
		t.Fatalf("expected source rewrite, got %+v", d)
	}

	for _, p := range []string{
		"/pdf/src/pages/merge-pdf.html", // already a source path
		"/pdf/split-pdf.html",           // known page without a source file
		"/pdf/unknown.html",             // not a page
		"/pdf/merge-pdf",                // no .html suffix
	} {
		if d := r.Resolve(p, ""); d.Kind != PassThrough || d.Target != p {
			t.Errorf("Resolve(%q) = %+v, want pass-through", p, d)
		}
	}
}

func TestDistLocator_ProbeCache(t *testing.T) {
	dist := t.TempDir()
	l := NewDistLocator(dist, "/", WithProbeCache())

	if _, ok := l.Page(i18n.LangDE, "merge-pdf"); ok {
		t.Fatal("expected miss before file exists")
	}
	touch(t, dist, "de/merge-pdf.html")
	if _, ok := l.Page(i18n.LangDE, "merge-pdf"); ok {
		t.Fatal("expected cached miss")
	}

	uncached := NewDistLocator(dist, "/")
	if target, ok := uncached.Page(i18n.LangDE, "merge-pdf"); !ok || target != "/de/merge-pdf.html" {
		t.Fatalf("expected hit without cache, got %q %v", target, ok)
	}
}

func TestDistLocator_DirectoryIsNotAFile(t *testing.T) {
	dist := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dist, "de", "merge-pdf.html"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, ok := NewDistLocator(dist, "/").Page(i18n.LangDE, "merge-pdf"); ok {
		t.Fatal("a directory must not count as a compiled page")
	}
}

func TestResolve_SimpleIndex(t *testing.T) {
	newResolver := func(simple bool, files ...string) *Resolver {
		dist := t.TempDir()
		for _, f := range files {
			touch(t, dist, f)
		}
		var opts []Option
		if simple {
			opts = append(opts, WithSimpleIndex())
		}
		return NewResolver(Config{
			Matcher:  i18n.NewMatcher(i18n.AllLanguages),
			Pages:    pages.New("index", "merge-pdf"),
			Locator:  NewDistLocator(dist, "/", opts...),
			BasePath: "/",
		})
	}

	tests := []struct {
		name   string
		simple bool
		files  []string
		path   string
		target string
		kind   Kind
	}{
		{"off ignores simple page", false, []string{"index.html", "simple-index.html", "de/simple-index.html"}, "/de/", "/index.html", FallbackPage},
		{"localized simple first", true, []string{"index.html", "de/index.html", "simple-index.html", "de/simple-index.html"}, "/de/", "/de/simple-index.html", LocalizedIndex},
		{"canonical simple", true, []string{"index.html", "de/index.html", "simple-index.html"}, "/de/", "/simple-index.html", FallbackPage},
		{"no simple page", true, []string{"index.html", "de/index.html"}, "/de/", "/de/index.html", LocalizedIndex},
		{"pages unaffected", true, []string{"simple-index.html", "de/merge-pdf.html"}, "/de/merge-pdf", "/de/merge-pdf.html", LocalizedPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newResolver(tt.simple, tt.files...).Resolve(tt.path, "")
			if d.Target != tt.target || d.Kind != tt.kind {
				t.Fatalf("Resolve(%q) = %+v, want %s %s", tt.path, d, tt.kind, tt.target)
			}
		})
	}
}

func TestDevLocator_SimpleIndex(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "index.html")

	l := NewDevLocator(root, "src/pages", "/", WithSimpleIndex())
	if target, _ := l.Index(i18n.LangDE); target != "/index.html" {
		t.Fatalf("expected canonical index without a simple page, got %q", target)
	}
	touch(t, root, "simple-index.html")
	if target, localized := l.Index(i18n.LangDE); target != "/simple-index.html" || localized {
		t.Fatalf("expected simple index, got %q %v", target, localized)
	}
	if target, _ := NewDevLocator(root, "src/pages", "/").Index(i18n.LangDE); target != "/index.html" {
		t.Fatalf("simple index must be opt-in, got %q", target)
	}
}
