package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

// HTTPServerMetrics carries the API-side prometheus registry: generic HTTP
// counters plus the AI pipeline series.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	pipelineRunsTotal        *prometheus.CounterVec
	pipelineConfidence       *prometheus.HistogramVec
	fallbackAttemptsTotal    *prometheus.CounterVec
	fallbackUsedTotal        *prometheus.CounterVec
	persistenceFailuresTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rxpilot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rxpilot",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rxpilot",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	pipelineRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rxpilot",
			Subsystem: "ai",
			Name:      "pipeline_runs_total",
			Help:      "Total completed AI pipeline runs by flow.",
		},
		[]string{"service", "flow"},
	)
	pipelineConfidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rxpilot",
			Subsystem: "ai",
			Name:      "confidence",
			Help:      "Distribution of self-reported confidence per pipeline run.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"service", "flow"},
	)
	fallbackAttemptsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rxpilot",
			Subsystem: "ai",
			Name:      "fallback_attempts_total",
			Help:      "Total pipeline runs where the fallback model was called.",
		},
		[]string{"service", "flow"},
	)
	fallbackUsedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rxpilot",
			Subsystem: "ai",
			Name:      "fallback_used_total",
			Help:      "Total pipeline runs where the fallback answer won arbitration.",
		},
		[]string{"service", "flow"},
	)
	persistenceFailuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rxpilot",
			Subsystem: "ai",
			Name:      "persistence_failures_total",
			Help:      "Total best-effort record writes that failed after a pipeline run.",
		},
		[]string{"service", "flow"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		pipelineRunsTotal,
		pipelineConfidence,
		fallbackAttemptsTotal,
		fallbackUsedTotal,
		persistenceFailuresTotal,
	)

	return &HTTPServerMetrics{
		registry:                 registry,
		requestTotal:             requestTotal,
		requestDuration:          requestDuration,
		requestInFlight:          requestInFlight,
		pipelineRunsTotal:        pipelineRunsTotal,
		pipelineConfidence:       pipelineConfidence,
		fallbackAttemptsTotal:    fallbackAttemptsTotal,
		fallbackUsedTotal:        fallbackUsedTotal,
		persistenceFailuresTotal: persistenceFailuresTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses resource ids so the path label stays low-cardinality.
func normalizePath(path string) string {
	prefixes := []struct {
		prefix string
		label  string
	}{
		{"/v1/medicines/", "/v1/medicines/{id}"},
		{"/v1/shipments/", "/v1/shipments/{id}"},
		{"/v1/patients/", "/v1/patients/{id}"},
		{"/v1/pharmanet/drugs/", "/v1/pharmanet/drugs/{rxcui}"},
		{"/v1/pharmanet/trial-summaries/", "/v1/pharmanet/trial-summaries/{id}"},
	}
	for _, p := range prefixes {
		if strings.HasPrefix(path, p.prefix) {
			return p.label
		}
	}
	return path
}

// PipelineObserver for the orchestrator.
type PipelineRecorder struct {
	metrics *HTTPServerMetrics
	service string
}

func (m *HTTPServerMetrics) Pipeline(service string) *PipelineRecorder {
	return &PipelineRecorder{metrics: m, service: service}
}

func (r *PipelineRecorder) PipelineCompleted(flow string, confidence *float64, fallback domain.FallbackOutcome) {
	if flow == "" {
		flow = "unknown"
	}
	r.metrics.pipelineRunsTotal.WithLabelValues(r.service, flow).Inc()
	if confidence != nil {
		r.metrics.pipelineConfidence.WithLabelValues(r.service, flow).Observe(*confidence)
	}
	if fallback.Attempted {
		r.metrics.fallbackAttemptsTotal.WithLabelValues(r.service, flow).Inc()
	}
	if fallback.Used {
		r.metrics.fallbackUsedTotal.WithLabelValues(r.service, flow).Inc()
	}
}

func (r *PipelineRecorder) PersistenceFailed(flow string) {
	if flow == "" {
		flow = "unknown"
	}
	r.metrics.persistenceFailuresTotal.WithLabelValues(r.service, flow).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
