package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/RobinCoderZhao/pdfsite/internal/accesslog"
	"github.com/RobinCoderZhao/pdfsite/internal/langroute"
)

type hitKey struct{}

// pendingHit carries the routing decision from the rewriter back out to the
// access log middleware.
type pendingHit struct {
	decision langroute.Decision
	set      bool
}

// accessLog wraps the rewriter and records page requests with their final
// status. Asset pass-throughs are not recorded.
func (s *Server) accessLog(next http.Handler) http.Handler {
	if s.recorder == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := &pendingHit{}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), hitKey{}, p)))

		if !p.set {
			return
		}
		d := p.decision
		if d.Kind == langroute.PassThrough && !isDocument(r.URL.Path) {
			return
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.recorder.Record(hit(r.URL.Path, d, status))
	})
}

// captureDecision is a langroute.Observer feeding accessLog.
func (s *Server) captureDecision(r *http.Request, d langroute.Decision) {
	if p, ok := r.Context().Value(hitKey{}).(*pendingHit); ok {
		p.decision = d
		p.set = true
	}
}

func hit(path string, d langroute.Decision, status int) accesslog.Hit {
	target := d.Target
	if d.Kind == langroute.Redirect {
		target = d.Location
	}
	return accesslog.Hit{
		Path:     path,
		Language: string(d.Language),
		Kind:     d.Kind.String(),
		Page:     d.Page,
		Target:   target,
		Status:   status,
		At:       time.Now(),
	}
}

// isDocument reports whether p looks like a page rather than an asset.
func isDocument(p string) bool {
	for i := len(p) - 1; i >= 0 && p[i] != '/'; i-- {
		if p[i] == '.' {
			return p[i:] == ".html"
		}
	}
	return true
}
