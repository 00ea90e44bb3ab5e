package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jamroom_ws_connections",
		Help: "Current number of registered member connections",
	})
	BroadcastsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jamroom_broadcasts_total",
		Help: "Total number of room events broadcast, by event type",
	}, []string{"type"})
	PushDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jamroom_push_dropped_total",
		Help: "Total number of push messages dropped because a connection could not take them",
	})
	ReconcileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "jamroom_reconcile_cycle_duration_seconds",
		Help:    "Duration of a reconciliation cycle over all rooms",
		Buckets: prometheus.DefBuckets,
	})
	ReconcileSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jamroom_reconcile_cycles_skipped_total",
		Help: "Total number of reconciliation ticks skipped because the previous cycle was still running",
	})
	ProviderErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jamroom_provider_errors_total",
		Help: "Total number of failed provider polls",
	})
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jamroom_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jamroom_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(
		WsConnections,
		BroadcastsTotal,
		PushDroppedTotal,
		ReconcileDuration,
		ReconcileSkippedTotal,
		ProviderErrorsTotal,
		HttpRequestsTotal,
		HttpRequestDuration,
	)
}

// Middleware records request counts and latencies by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HttpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HttpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
