package server

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/RobinCoderZhao/pdfsite/internal/dev"
	"github.com/RobinCoderZhao/pdfsite/internal/langroute"
	"github.com/RobinCoderZhao/pdfsite/internal/linkrewrite"
	"github.com/RobinCoderZhao/pdfsite/internal/siteconfig"
	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
)

const langCookieMaxAge = 365 * 24 * time.Hour

// staticHandler serves files after the rewriter has chosen the target. The
// root is the source tree in dev mode and the compiled output in prod mode.
func (s *Server) staticHandler() http.Handler {
	root := s.cfg.DistDir
	if s.cfg.Server.Mode == siteconfig.ModeDev {
		root = s.cfg.SourceRoot
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rel, ok := s.stripBase(r.URL.Path)
		if !ok {
			s.notFound(w, r, root)
			return
		}

		file, ok := lookup(root, rel)
		if !ok {
			s.notFound(w, r, root)
			return
		}
		if strings.HasSuffix(file, ".html") {
			s.serveHTML(w, r, file, http.StatusOK)
			return
		}
		serveFile(w, r, file)
	})
}

// lookup maps a site-rooted path to a regular file under root. Directories
// resolve to their index.html and extensionless paths may name an .html file.
func lookup(root, rel string) (string, bool) {
	clean := path.Clean("/" + rel)
	full := filepath.Join(root, filepath.FromSlash(clean))

	info, err := os.Stat(full)
	switch {
	case err == nil && info.IsDir():
		full = filepath.Join(full, "index.html")
	case errors.Is(err, fs.ErrNotExist) && path.Ext(clean) == "":
		full += ".html"
	case err != nil:
		return "", false
	}

	info, err = os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return full, true
}

func serveFile(w http.ResponseWriter, r *http.Request, file string) {
	f, err := os.Open(file)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// notFound serves the site's 404 page when there is one.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request, root string) {
	if file, ok := lookup(root, "/404.html"); ok {
		s.serveHTML(w, r, file, http.StatusNotFound)
		return
	}
	http.NotFound(w, r)
}

// serveHTML localizes in-site links for the active language, refreshes the
// language cookie on prefixed requests and injects the reload client in dev.
func (s *Server) serveHTML(w http.ResponseWriter, r *http.Request, file string, status int) {
	content, err := os.ReadFile(file)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	d, _ := langroute.DecisionFrom(r.Context())
	lang := d.Language
	if lang == "" {
		lang = s.detector.Detect(s.detectSignals(r))
	} else {
		s.setLanguageCookie(w, r, lang)
	}

	doc := string(content)
	out, err := linkrewrite.RewriteHTML(doc, linkrewrite.Options{
		Language:    lang,
		Default:     s.detector.Default(),
		BasePath:    s.base,
		Matcher:     s.matcher,
		SetHTMLLang: true,
	})
	if err != nil {
		s.logger.Warn("link rewrite failed, serving original", "file", file, "error", err)
		out = doc
	}
	if s.reload != nil {
		out = dev.InjectClient(out, s.base)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Language", string(lang))
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = bytes.NewBufferString(out).WriteTo(w)
	}
}

// detectSignals collects the language inputs of r. Path is relative to the
// base and stays empty for requests outside it.
func (s *Server) detectSignals(r *http.Request) i18n.Signals {
	sig := i18n.Signals{
		Country:        r.Header.Get("CF-IPCountry"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
	}
	if rel, ok := s.stripBase(r.URL.Path); ok {
		sig.Path = rel
	}
	if c, err := r.Cookie(i18n.CookieName); err == nil {
		sig.Cookie = c.Value
	}
	return sig
}

func (s *Server) setLanguageCookie(w http.ResponseWriter, r *http.Request, lang i18n.Language) {
	if c, err := r.Cookie(i18n.CookieName); err == nil && c.Value == string(lang) {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     i18n.CookieName,
		Value:    string(lang),
		Path:     s.base,
		MaxAge:   int(langCookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}
