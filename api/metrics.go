package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "searoute",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "searoute",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	routesComputed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "searoute",
		Subsystem: "route",
		Name:      "computed_total",
		Help:      "Total routes computed",
	})

	routesNotFound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "searoute",
		Subsystem: "route",
		Name:      "not_found_total",
		Help:      "Total route requests with no feasible route",
	})

	routesWithoutAlternate = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "searoute",
		Subsystem: "route",
		Name:      "missing_alternate_total",
		Help:      "Total routes computed without an alternate",
	})

	searchPops = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "searoute",
		Subsystem: "route",
		Name:      "search_pops",
		Help:      "Frontier pops per route computation",
		Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
	})

	vesselsTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "searoute",
		Subsystem: "ais",
		Name:      "vessels_tracked",
		Help:      "Vessels in the latest snapshot",
	})

	weatherUpstreamErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "searoute",
		Subsystem: "weather",
		Name:      "upstream_errors_total",
		Help:      "Total failed open-meteo fetches",
	})
)

// statusRecorder keeps the status a handler wrote, 200 if it never did.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path
		if route := mux.CurrentRoute(req); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, req)

		httpRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(req.Method, path).Observe(time.Since(start).Seconds())
	})
}
