package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mock_interview"

// AI result kinds and outcomes
const (
	KindGrade     = "grade"
	KindQuestions = "questions"

	OutcomeParsed   = "parsed"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
)

// chi route patterns keep path ids out of the label set
var routeLabel = promhttp.WithLabelFromCtx("route", routePattern)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by status code, method and route.",
	}, []string{"code", "method", "route"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by status code, method and route.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"code", "method", "route"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "in_flight_requests",
		Help:      "Requests currently being served.",
	})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response sizes by route.",
		Buckets:   prometheus.ExponentialBuckets(128, 4, 7),
	}, []string{"code", "method", "route"})

	aiResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_results_total",
		Help:      "AI results by kind and normalization outcome",
	}, []string{"kind", "outcome"})

	aiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ai_request_duration_seconds",
		Help:      "Duration of AI provider calls in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"provider", "status"})

	liveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_subscribers",
		Help:      "Open live view and capture sockets",
	})
)

// Middleware instruments every request with the counters above. Grading
// calls can hold a request for tens of seconds, hence the wide buckets.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := promhttp.InstrumentHandlerResponseSize(httpResponseSize, next, routeLabel)
		h = promhttp.InstrumentHandlerDuration(httpLatency, h, routeLabel)
		h = promhttp.InstrumentHandlerCounter(httpRequests, h, routeLabel)
		return promhttp.InstrumentHandlerInFlight(httpInFlight, h)
	}
}

func routePattern(ctx context.Context) string {
	if rctx := chi.RouteContext(ctx); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func ObserveAIResult(kind, outcome string) {
	aiResults.WithLabelValues(kind, outcome).Inc()
}

func ObserveAICall(provider, status string, d time.Duration) {
	aiLatency.WithLabelValues(provider, status).Observe(d.Seconds())
}

// TrackSubscriber increments the open socket gauge and returns its release func.
func TrackSubscriber() func() {
	liveSubscribers.Inc()
	return liveSubscribers.Dec
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
