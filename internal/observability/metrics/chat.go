package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leafwise/support-chat-core/internal/core/domain"
)

// ChatMetrics carries the HTTP and engine instrumentation on a private
// registry. It implements ports.TurnObserver.
type ChatMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	turnsTotal        *prometheus.CounterVec
	matchScore        prometheus.Histogram
	fallbackRuleTotal *prometheus.CounterVec
	quickActionTotal  *prometheus.CounterVec
	openSessions      prometheus.Gauge
	contactCardTotal  prometheus.Counter
}

func NewChatMetrics(service string) *ChatMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leafwise",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leafwise",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "leafwise",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	turnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leafwise",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total resolved turns by outcome.",
		},
		[]string{"service", "outcome"},
	)
	matchScore := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "leafwise",
			Subsystem: "chat",
			Name:      "match_score",
			Help:      "Distribution of winning matcher scores.",
			Buckets:   []float64{2, 3, 5, 8, 13, 21, 34},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	fallbackRuleTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leafwise",
			Subsystem: "chat",
			Name:      "fallback_rule_total",
			Help:      "Total fallback resolutions by rule.",
		},
		[]string{"service", "rule"},
	)
	quickActionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leafwise",
			Subsystem: "chat",
			Name:      "quick_action_total",
			Help:      "Total quick action invocations by action.",
		},
		[]string{"service", "action"},
	)
	openSessions := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "leafwise",
			Subsystem: "chat",
			Name:      "open_sessions",
			Help:      "Number of currently open chat sessions.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	contactCardTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "leafwise",
			Subsystem: "chat",
			Name:      "contact_card_total",
			Help:      "Total times the contact card was requested.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		turnsTotal,
		matchScore,
		fallbackRuleTotal,
		quickActionTotal,
		openSessions,
		contactCardTotal,
	)

	return &ChatMetrics{
		registry:          registry,
		service:           service,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		turnsTotal:        turnsTotal,
		matchScore:        matchScore,
		fallbackRuleTotal: fallbackRuleTotal,
		quickActionTotal:  quickActionTotal,
		openSessions:      openSessions,
		contactCardTotal:  contactCardTotal,
	}
}

func (m *ChatMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ChatMetrics) Middleware(service string, next http.Handler) http.Handler {
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

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/v1/sessions/") {
		return path
	}
	rest := strings.TrimPrefix(path, "/v1/sessions/")
	switch {
	case strings.HasSuffix(rest, "/messages"):
		return "/v1/sessions/{session_id}/messages"
	case strings.HasSuffix(rest, "/quick-actions"):
		return "/v1/sessions/{session_id}/quick-actions"
	default:
		return "/v1/sessions/{session_id}"
	}
}

func (m *ChatMetrics) TurnResolved(outcome domain.TurnOutcome, score int) {
	m.turnsTotal.WithLabelValues(m.service, string(outcome)).Inc()
	if score > 0 {
		m.matchScore.Observe(float64(score))
	}
}

func (m *ChatMetrics) FallbackRuleFired(rule string) {
	if rule == "" {
		rule = "unknown"
	}
	m.fallbackRuleTotal.WithLabelValues(m.service, rule).Inc()
}

func (m *ChatMetrics) QuickActionUsed(action domain.QuickAction) {
	m.quickActionTotal.WithLabelValues(m.service, string(action)).Inc()
}

func (m *ChatMetrics) SessionOpened() {
	m.openSessions.Inc()
}

func (m *ChatMetrics) SessionClosed() {
	m.openSessions.Dec()
}

func (m *ChatMetrics) ContactCardRequested() {
	m.contactCardTotal.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
