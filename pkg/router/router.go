package router

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

// route is one registered method+pattern pair. Patterns use "*" as a
// single-segment wildcard; a trailing "*" matches the rest of the path.
type route struct {
	method   string
	segments []string
	handler  HandlerFunc
}

type Router struct {
	mux     *http.ServeMux
	routes  []route
	mounted map[string]bool // prefixes handed to Handle
}

func New() *Router {
	r := &Router{
		mux:     http.NewServeMux(),
		mounted: make(map[string]bool),
	}

	r.mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		r.dispatch(lrw, req)

		duration := time.Since(start)
		log.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
			colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
			methodColor(req.Method), req.Method, colorReset,
			req.URL.Path,
			statusColor(lrw.statusCode), lrw.statusCode, colorReset,
			colorBlue, duration, colorReset,
		)
	})

	return r
}

// dispatch finds the first registered route matching the request. Routes are
// tried in registration order, so callers register specific patterns before
// generic ones.
func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	segments := splitPath(req.URL.Path)

	pathKnown := false
	for _, rt := range r.routes {
		if !matchSegments(segments, rt.segments) {
			continue
		}
		pathKnown = true
		if rt.method == req.Method {
			rt.handler(w, req)
			return
		}
	}

	if pathKnown {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// matchSegments compares a request path against a pattern segment by
// segment. A trailing "*" consumes everything left.
func matchSegments(path, pattern []string) bool {
	for i, seg := range pattern {
		if seg == "*" && i == len(pattern)-1 {
			return len(path) >= len(pattern)
		}
		if i >= len(path) || (seg != "*" && path[i] != seg) {
			return false
		}
	}
	return len(path) == len(pattern)
}

// --- Register paths ---
func (r *Router) register(method, path string, handler HandlerFunc) {
	r.routes = append(r.routes, route{
		method:   method,
		segments: splitPath(path),
		handler:  handler,
	})
}

func (r *Router) GET(path string, handler HandlerFunc)   { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)  { r.register(http.MethodPost, path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)   { r.register(http.MethodPut, path, handler) }
func (r *Router) PATCH(path string, handler HandlerFunc) { r.register(http.MethodPatch, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) {
	r.register(http.MethodDelete, path, handler)
}

// Handle mounts an http.Handler under a path prefix, bypassing the route
// table. Used for things like the swagger UI that route internally.
func (r *Router) Handle(prefix string, h http.Handler) {
	r.mounted[prefix] = true
	r.mux.Handle(prefix, h)
}

// Getter methods for testing
func (r *Router) Routes() []string {
	var out []string
	for _, rt := range r.routes {
		out = append(out, rt.method+":/"+strings.Join(rt.segments, "/"))
	}
	return out
}

// ServeHTTP makes the router usable directly with httptest
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// --- Start server ---
func (r *Router) Start(addr string) {
	log.Printf("🚀 Server started on %shttp://localhost%s%s", colorGreen, addr, colorReset)
	log.Fatal(http.ListenAndServe(addr, r.mux))
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodPut:
		return colorYellow
	case http.MethodPatch:
		return colorYellow
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}
