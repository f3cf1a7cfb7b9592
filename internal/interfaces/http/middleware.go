package httpinterface

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tabadex/tabadex-bot/internal/metrics"
)

// countRequests records every served request on the gateway counter, using
// the chi route pattern so path parameters don't explode the cardinality.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, path, strconv.Itoa(ww.Status()),
		).Inc()
	})
}

// userIDParam parses the {userID} path parameter, writing a 400 on failure.
func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

// adminIDHeader parses the X-Admin-ID header identifying the calling
// operator. The admin service enforces the allowlist itself.
func adminIDHeader(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get("X-Admin-ID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid X-Admin-ID header")
		return 0, false
	}
	return id, true
}
