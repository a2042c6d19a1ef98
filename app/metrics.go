package app

import (
	"net/http"
	"strconv"

	"github.com/advdv/bcapture"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath is where the prometheus metrics are served.
const MetricsPath = "/metrics"

// Metrics counts released responses and serve errors.
type Metrics struct {
	reg      *prometheus.Registry
	releases *prometheus.CounterVec
	bytes    prometheus.Histogram
	errors   *prometheus.CounterVec
}

// NewMetrics registers the collectors with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bcapture",
			Name:      "releases_total",
			Help:      "Number of responses released to clients.",
		}, []string{"channel", "static", "transformed"}),
		bytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bcapture",
			Name:      "released_bytes",
			Help:      "Size of buffered responses after transformation.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bcapture",
			Name:      "serve_errors_total",
			Help:      "Number of handler errors, by whether the response was already committed.",
		}, []string{"committed"}),
	}

	m.reg.MustRegister(m.releases, m.bytes, m.errors)

	return m
}

// Handler serves the metrics in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Logger decorates next so every logged event is also counted.
func (m *Metrics) Logger(next bcapture.Logger) bcapture.Logger {
	return metricsLogger{m: m, next: next}
}

type metricsLogger struct {
	m    *Metrics
	next bcapture.Logger
}

func (l metricsLogger) LogUnhandledServeError(err error) {
	l.m.errors.WithLabelValues("false").Inc()
	l.next.LogUnhandledServeError(err)
}

func (l metricsLogger) LogCommittedServeError(err error) {
	l.m.errors.WithLabelValues("true").Inc()
	l.next.LogCommittedServeError(err)
}

func (l metricsLogger) LogRelease(rel bcapture.Release) {
	l.m.releases.WithLabelValues(
		rel.Channel.String(),
		strconv.FormatBool(rel.Static),
		strconv.FormatBool(rel.Transformed),
	).Inc()

	if rel.Buffered {
		l.m.bytes.Observe(float64(rel.Bytes))
	}

	l.next.LogRelease(rel)
}
