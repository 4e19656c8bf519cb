// Package metrics provides Prometheus instrumentation for the margin engine.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PlansTotal counts plans produced, partitioned by kind
	// (order, borrow, close, repay) and outcome.
	PlansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "margin_plans_total",
		Help: "Total number of plans computed",
	}, []string{"kind", "outcome"})

	// ValidationRejections counts order requests rejected by the sizer.
	ValidationRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "margin_validation_rejections_total",
		Help: "Plan requests rejected by input validation",
	}, []string{"kind"})

	// RecomputeLatency tracks how long a full position/valuation
	// recomputation takes.
	RecomputeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "margin_recompute_latency_seconds",
		Help:    "Position and valuation recompute latency in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	// MemoLookups counts memo hits and misses.
	MemoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "margin_memo_lookups_total",
		Help: "Evaluation memo lookups by result",
	}, []string{"result"})

	// IngestTotal counts collaborator pushes by kind.
	IngestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "margin_ingest_total",
		Help: "Snapshots, fills and prices ingested",
	}, []string{"kind"})

	// Pools tracks the number of registered pools.
	Pools = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "margin_pools",
		Help: "Number of registered margin pools",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "margin_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "margin_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "margin_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Route pattern keeps manager IDs out of the label set.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrade pass through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}
