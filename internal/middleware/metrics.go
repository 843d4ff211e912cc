package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"bookshelf/internal/metrics"
)

// Instrument records request counts and latencies labelled by route
// template, so path parameters do not explode label cardinality. It must be
// installed with mux.Router.Use to see the matched route.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := "unmatched"
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}

		rec := newStatusRecorder(w)
		start := time.Now()
		metrics.HttpInFlight.Inc()
		defer metrics.HttpInFlight.Dec()

		next.ServeHTTP(rec, r)

		metrics.HttpRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
		metrics.HttpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
	})
}
