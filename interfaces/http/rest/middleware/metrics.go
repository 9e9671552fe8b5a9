package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestObserver receives one observation per finished HTTP request
type RequestObserver interface {
	ObserveRequest(method, route, status string, seconds float64)
}

// Metrics creates a middleware recording request counts and latency. The
// route label uses the chi route pattern, not the raw path, to keep label
// cardinality bounded.
func Metrics(observer RequestObserver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			observer.ObserveRequest(
				r.Method,
				route,
				strconv.Itoa(ww.Status()),
				time.Since(start).Seconds(),
			)
		})
	}
}
