package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookshelf_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HttpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookshelf_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	HttpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookshelf_http_inflight_requests",
		Help: "Current number of in-flight HTTP requests",
	})

	ReviewWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookshelf_review_writes_total",
		Help: "Review updates by action (set, clear) and outcome",
	}, []string{"action", "outcome"})

	AccountEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookshelf_account_events_total",
		Help: "Registrations and logins by outcome",
	}, []string{"event", "outcome"})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookshelf_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

func Handler() http.Handler { return promhttp.Handler() }
