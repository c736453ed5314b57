package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-mvc/framework/logging"
)

// Router wraps chi.Router. Framework endpoints (metrics) are registered on
// it explicitly; everything else falls through to the mounted dispatcher.
type Router struct {
	mux chi.Router
}

// New creates a Router with the standard middleware stack: real client IP,
// request id, request log, panic recovery.
func New(log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(logging.RequestID)
	r.Use(logging.Requests(log))
	r.Use(middleware.Recoverer)
	return &Router{mux: r}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.Handler) { r.mux.Method(http.MethodGet, pattern, h) }

// Any registers a handler for all common HTTP methods.
func (r *Router) Any(pattern string, h http.Handler) {
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"} {
		r.mux.Method(m, pattern, h)
	}
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing the router's prefix.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// Prefix creates a sub-router under pattern.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Fallback ─────────────────────────────────────────────────────────────────

// Fallback sends every request no other route claims to h, whatever its
// path or method. The dispatcher is mounted this way so that it sees the
// raw path and does its own matching.
func (r *Router) Fallback(h http.Handler) {
	r.mux.Handle("/*", h)
	r.mux.NotFound(h.ServeHTTP)
	r.mux.MethodNotAllowed(h.ServeHTTP)
}

// ── Introspection ────────────────────────────────────────────────────────────

// Patterns returns "METHOD pattern" for every explicitly registered route.
func (r *Router) Patterns() []string {
	var out []string
	_ = chi.Walk(r.mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, method+" "+route)
		return nil
	})
	return out
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler.
func (r *Router) Handler() http.Handler {
	return r.mux
}
