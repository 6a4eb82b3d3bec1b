package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RobinCoderZhao/pdfsite/internal/ogcard"
	"github.com/RobinCoderZhao/pdfsite/internal/wasm"
	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
)

func (s *Server) handleWASM() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		respondJSON(w, http.StatusOK, map[string]any{
			"remote":  s.cfg.WASM.Remote,
			"modules": wasm.Sources(s.cfg.WASM, s.base),
		})
	}
}

// handleOGCard renders /_site/og/{page}.png?lang=xx for known pages.
func (s *Server) handleOGCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := chi.URLParam(r, "page")
		if !s.pages.Has(page) {
			respondError(w, http.StatusNotFound, "unknown page")
			return
		}
		lang := s.detector.Default()
		if q := r.URL.Query().Get("lang"); q != "" {
			if !i18n.Contains(s.matcher.Languages(), q) {
				respondError(w, http.StatusBadRequest, "unsupported language")
				return
			}
			lang = i18n.Language(q)
		}

		png, err := s.cards.PNG(ogcard.Card{Page: page, Language: lang, SiteName: s.cfg.SiteName})
		if err != nil {
			s.logger.Error("render card failed", "page", page, "error", err)
			respondError(w, http.StatusInternalServerError, "render failed")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(png)
		}
	}
}

// --- Admin API ---

func (s *Server) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.stats == nil {
			respondError(w, http.StatusServiceUnavailable, "access log disabled")
			return
		}
		days := 7
		if v := r.URL.Query().Get("days"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 || n > 365 {
				respondError(w, http.StatusBadRequest, "days must be between 1 and 365")
				return
			}
			days = n
		}
		since := time.Now().AddDate(0, 0, -days)

		top, err := s.stats.TopPages(r.Context(), since, 50)
		if err != nil {
			s.logger.Error("stats query failed", "error", err)
			respondError(w, http.StatusInternalServerError, "query failed")
			return
		}
		langs, err := s.stats.LanguageCounts(r.Context(), since)
		if err != nil {
			s.logger.Error("stats query failed", "error", err)
			respondError(w, http.StatusInternalServerError, "query failed")
			return
		}
		var dropped int64
		if s.recorder != nil {
			dropped = s.recorder.Dropped()
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"since":     since.UTC(),
			"top_pages": top,
			"languages": langs,
			"dropped":   dropped,
		})
	}
}

func (s *Server) handleResolve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Query().Get("path")
		if p == "" {
			respondError(w, http.StatusBadRequest, "path is required")
			return
		}
		respondJSON(w, http.StatusOK, s.resolver.Resolve(p, ""))
	}
}

func (s *Server) handlePages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"pages":     s.pages.Names(),
			"languages": s.matcher.Languages(),
			"default":   s.detector.Default(),
		})
	}
}
