// Package server assembles the HTTP surface of pdfsite: the language-aware
// static site, the dev live-reload endpoint and the admin API.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/RobinCoderZhao/pdfsite/internal/accesslog"
	"github.com/RobinCoderZhao/pdfsite/internal/dev"
	"github.com/RobinCoderZhao/pdfsite/internal/langroute"
	"github.com/RobinCoderZhao/pdfsite/internal/ogcard"
	"github.com/RobinCoderZhao/pdfsite/internal/pages"
	"github.com/RobinCoderZhao/pdfsite/internal/siteconfig"
	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
	"github.com/RobinCoderZhao/pdfsite/pkg/mcpserver"
)

// Deps are the collaborators a Server is built from. Optional ones may be nil.
type Deps struct {
	Config siteconfig.SiteConfig
	Pages  *pages.Catalog

	Recorder *accesslog.Recorder // nil disables access logging
	Stats    *accesslog.Store    // nil disables /_site/api/stats
	Reload   *dev.ReloadServer   // dev mode only

	Registry *prometheus.Registry
	Version  string
}

// Server holds the dependencies for the HTTP handlers.
type Server struct {
	cfg       siteconfig.SiteConfig
	base      string
	pages     *pages.Catalog
	matcher   *i18n.Matcher
	resolver  *langroute.Resolver
	detector  *i18n.Detector
	rewriter  *langroute.Rewriter
	recorder  *accesslog.Recorder
	stats     *accesslog.Store
	reload    *dev.ReloadServer
	metrics   *metrics
	cards     *ogcard.Renderer
	mcp       *mcpserver.Server
	jwtSecret []byte
	version   string
	logger    *slog.Logger
}

// New creates a Server. cfg must already be normalised.
func New(deps Deps) *Server {
	cfg := deps.Config
	s := &Server{
		cfg:       cfg,
		base:      cfg.BaseURL,
		pages:     deps.Pages,
		matcher:   i18n.NewMatcher(cfg.Languages),
		recorder:  deps.Recorder,
		stats:     deps.Stats,
		reload:    deps.Reload,
		metrics:   newMetrics(deps.Registry),
		cards:     ogcard.NewRenderer(cfg.OGFont),
		jwtSecret: []byte(cfg.Admin.JWTSecret),
		version:   deps.Version,
		logger:    slog.Default(),
	}

	s.resolver = NewResolver(cfg, s.pages, s.matcher)
	s.detector = i18n.NewDetector(s.matcher, cfg.DefaultLanguage, cfg.DetectAcceptLanguage)
	s.rewriter = langroute.NewRewriter(s.resolver, s.metrics.observe, s.captureDecision)
	s.mcp = s.newMCPServer()

	if s.recorder != nil {
		s.metrics.gaugeFunc("access_log_dropped", "Hits dropped because the access log queue was full",
			func() float64 { return float64(s.recorder.Dropped()) })
	}
	if s.reload != nil {
		s.metrics.gaugeFunc("reload_clients", "Connected live reload clients",
			func() float64 { return float64(s.reload.ClientCount()) })
	}
	return s
}

// NewResolver builds the route resolver for cfg: page sources in dev mode,
// compiled output in prod mode.
func NewResolver(cfg siteconfig.SiteConfig, catalog *pages.Catalog, m *i18n.Matcher) *langroute.Resolver {
	var opts []langroute.Option
	if cfg.SimpleMode {
		opts = append(opts, langroute.WithSimpleIndex())
	}

	var loc langroute.Locator
	if cfg.Server.Mode == siteconfig.ModeDev {
		loc = langroute.NewDevLocator(cfg.SourceRoot, cfg.PagesDir, cfg.BaseURL, opts...)
	} else {
		if cfg.Server.CacheProbes {
			opts = append(opts, langroute.WithProbeCache())
		}
		loc = langroute.NewDistLocator(cfg.DistDir, cfg.BaseURL, opts...)
	}
	return langroute.NewResolver(langroute.Config{
		Matcher:  m,
		Pages:    catalog,
		Locator:  loc,
		BasePath: cfg.BaseURL,
	})
}

// Resolver returns the route resolver.
func (s *Server) Resolver() *langroute.Resolver { return s.resolver }

// MCP returns the diagnostics MCP server, also used by the stdio command.
func (s *Server) MCP() *mcpserver.Server { return s.mcp }

// Routes returns the configured http.Handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.With(s.metrics.instrument("health")).Get("/healthz", s.handleHealth())
	r.Handle("/metrics", s.metrics.handler())

	r.Route(s.base+"_site", func(r chi.Router) {
		r.Use(s.metrics.instrument("site_internal"))
		r.Get("/wasm.json", s.handleWASM())
		r.Get("/og/{page}.png", s.handleOGCard())
		if s.reload != nil {
			r.Handle("/reload", s.reload)
		}

		if !s.adminEnabled() {
			return
		}
		r.Post("/api/login", s.handleLogin())
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/api/stats", s.handleStats())
			r.Get("/api/resolve", s.handleResolve())
			r.Get("/api/pages", s.handlePages())
			r.Handle("/mcp", s.mcp.Handler())
		})
	})

	site := s.accessLog(s.rewriter.Handler(s.staticHandler()))
	r.With(s.metrics.instrument("site")).Handle("/*", site)
	return r
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"mode":      s.cfg.Server.Mode,
			"simple":    s.cfg.SimpleMode,
			"version":   s.version,
			"pages":     s.pages.Len(),
			"languages": s.matcher.Languages(),
		})
	}
}

// --- Helpers ---

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// stripBase returns p relative to the site root, or false when p lies
// outside the base path.
func (s *Server) stripBase(p string) (string, bool) {
	if s.base == "/" {
		return p, true
	}
	trimmed := strings.TrimSuffix(s.base, "/")
	if p == trimmed {
		return "/", true
	}
	if strings.HasPrefix(p, s.base) {
		return p[len(trimmed):], true
	}
	return "", false
}
