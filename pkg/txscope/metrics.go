package txscope

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcodd23/go-txscope/pkg/configx"
)

const defaultMetricsNamespace = "txscope"

// Metrics - Prometheus collectors for the connection lifecycle.
// A Metrics built from a disabled configuration (or a nil *Metrics) records nothing.
type Metrics struct {
	borrows             *prometheus.CounterVec
	acquisitionFailures prometheus.Counter
	setupFailures       prometheus.Counter
	releases            *prometheus.CounterVec
	releaseErrors       *prometheus.CounterVec
	activeConnections   prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics(cfg *configx.MetricsConfig) *Metrics {
	if cfg == nil || !cfg.Enabled {
		return &Metrics{}
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = defaultMetricsNamespace
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		borrows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connection_borrows_total",
				Help:      "Total number of connections borrowed from the factory",
			},
			[]string{"mode"},
		),
		acquisitionFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "acquisition_failures_total",
				Help:      "Total number of failed connection borrows",
			},
		),
		setupFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transaction_setup_failures_total",
				Help:      "Total number of connections that could not enter transactional mode",
			},
		),
		releases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connection_releases_total",
				Help:      "Total number of connections released, by ending operation",
			},
			[]string{"operation"},
		),
		releaseErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "release_errors_total",
				Help:      "Total number of swallowed commit, rollback and release errors, by operation",
			},
			[]string{"operation"},
		),
		activeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_connections",
				Help:      "Current number of connections bound to a scope",
			},
		),
	}

	registry.MustRegister(
		m.borrows,
		m.acquisitionFailures,
		m.setupFailures,
		m.releases,
		m.releaseErrors,
		m.activeConnections,
	)

	return m
}

func (m *Metrics) enabled() bool {
	return m != nil && m.registry != nil
}

func (m *Metrics) recordBorrow(transactional bool) {
	if !m.enabled() {
		return
	}

	mode := "autocommit"
	if transactional {
		mode = "transaction"
	}
	m.borrows.WithLabelValues(mode).Inc()
	m.activeConnections.Inc()
}

func (m *Metrics) recordAcquisitionFailure() {
	if !m.enabled() {
		return
	}
	m.acquisitionFailures.Inc()
}

func (m *Metrics) recordSetupFailure() {
	if !m.enabled() {
		return
	}
	m.setupFailures.Inc()
}

func (m *Metrics) recordRelease(operation string) {
	if !m.enabled() {
		return
	}
	m.releases.WithLabelValues(operation).Inc()
	m.activeConnections.Dec()
}

func (m *Metrics) recordReleaseError(operation string) {
	if !m.enabled() {
		return
	}
	m.releaseErrors.WithLabelValues(operation).Inc()
}

// Registry returns the private registry, nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if !m.enabled() {
		return nil
	}

	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if !m.enabled() {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
