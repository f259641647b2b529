package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry and the client's collectors.
type Metrics struct {
	registry *prometheus.Registry

	trackingConnected  prometheus.Gauge
	trackingReconnects prometheus.Counter
	trackingMessages   *prometheus.CounterVec
	trackingDiscarded  *prometheus.CounterVec
	shares             *prometheus.CounterVec
	shareDuration      prometheus.Histogram
	apiRequests        *prometheus.CounterVec
}

// New creates a Metrics with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.initMetrics()
	m.registerMetrics()

	return m
}

func (m *Metrics) initMetrics() {
	// Tracking stream
	m.trackingConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "acenta_tracking_connected",
		Help: "Number of open tracking sockets",
	})

	m.trackingReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "acenta_tracking_reconnects_total",
		Help: "Total number of scheduled tracking reconnects",
	})

	m.trackingMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acenta_tracking_messages_total",
			Help: "Total number of dispatched tracking events",
		},
		[]string{"type"},
	)

	m.trackingDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acenta_tracking_discarded_total",
			Help: "Total number of ignored tracking frames",
		},
		[]string{"reason"}, // reason: malformed, unknown_type
	)

	// Location share
	m.shares = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acenta_location_shares_total",
			Help: "Total number of location share attempts",
		},
		[]string{"result"},
	)

	m.shareDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "acenta_location_share_duration_seconds",
		Help:    "Time from share start to settlement",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15, 30},
	})

	// REST API
	m.apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acenta_api_requests_total",
			Help: "Total number of REST API calls",
		},
		[]string{"op", "status"},
	)
}

func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(
		m.trackingConnected,
		m.trackingReconnects,
		m.trackingMessages,
		m.trackingDiscarded,
		m.shares,
		m.shareDuration,
		m.apiRequests,
	)

	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry for custom metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// TrackingOpened records a tracking socket that opened.
func (m *Metrics) TrackingOpened() {
	if m == nil {
		return
	}
	m.trackingConnected.Inc()
}

// TrackingClosed records a tracking socket that was open and has closed.
func (m *Metrics) TrackingClosed() {
	if m == nil {
		return
	}
	m.trackingConnected.Dec()
}

// RecordReconnect records a scheduled reconnect.
func (m *Metrics) RecordReconnect() {
	if m == nil {
		return
	}
	m.trackingReconnects.Inc()
}

// RecordMessage records a dispatched tracking event.
func (m *Metrics) RecordMessage(eventType string) {
	if m == nil {
		return
	}
	m.trackingMessages.WithLabelValues(eventType).Inc()
}

// RecordDiscard records a tracking frame that was ignored.
func (m *Metrics) RecordDiscard(reason string) {
	if m == nil {
		return
	}
	m.trackingDiscarded.WithLabelValues(reason).Inc()
}

// RecordLocationShare records a settled location share.
func (m *Metrics) RecordLocationShare(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.shares.WithLabelValues(result).Inc()
	m.shareDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records a REST call. status is the HTTP status code, or
// "error" when no response was received.
func (m *Metrics) RecordAPIRequest(op, status string) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(op, status).Inc()
}
