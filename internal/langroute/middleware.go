package langroute

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/RobinCoderZhao/pdfsite/internal/langroute"

type contextKey string

const decisionContextKey = contextKey("langroute.decision")

// WithDecision attaches d to ctx.
func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, decisionContextKey, d)
}

// DecisionFrom returns the decision stored by the rewriter, if any.
func DecisionFrom(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(decisionContextKey).(Decision)
	return d, ok
}

// Observer is notified of every decision before the request is forwarded.
type Observer func(r *http.Request, d Decision)

// Rewriter is the request-rewriting middleware shared by the dev server and
// the production preview server.
type Rewriter struct {
	resolver  *Resolver
	observers []Observer
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewRewriter creates a rewriter around res.
func NewRewriter(res *Resolver, observers ...Observer) *Rewriter {
	return &Rewriter{
		resolver:  res,
		observers: observers,
		tracer:    otel.Tracer(tracerName),
		logger:    slog.Default(),
	}
}

// Handler wraps next. Redirect decisions are answered with 302; all others
// forward a request whose path is the decision target.
func (rw *Rewriter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := rw.tracer.Start(r.Context(), "langroute.resolve",
			trace.WithSpanKind(trace.SpanKindInternal))

		d := rw.resolver.Resolve(r.URL.Path, r.URL.RawQuery)
		span.SetAttributes(
			attribute.String("pdfsite.route.kind", d.Kind.String()),
			attribute.String("pdfsite.route.language", string(d.Language)),
			attribute.String("pdfsite.route.target", d.Target),
			attribute.Bool("pdfsite.route.localized", d.Localized),
		)
		span.End()

		rw.logger.Debug("route resolved",
			"path", r.URL.Path,
			"kind", d.Kind.String(),
			"language", d.Language,
			"target", d.Target,
		)

		for _, obs := range rw.observers {
			obs(r, d)
		}

		if d.Kind == Redirect {
			w.Header().Set("Location", d.Location)
			w.WriteHeader(http.StatusFound)
			return
		}

		next.ServeHTTP(w, rewrite(r.WithContext(WithDecision(ctx, d)), d))
	})
}

// rewrite returns r with its path replaced by the decision target.
func rewrite(r *http.Request, d Decision) *http.Request {
	if d.Target == "" || d.Target == r.URL.Path {
		return r
	}
	r2 := r.Clone(r.Context())
	r2.URL.Path = d.Target
	r2.URL.RawPath = ""
	r2.RequestURI = d.RequestURI(r.URL.RawQuery)
	return r2
}
