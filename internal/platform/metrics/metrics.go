// Package metrics exposes Prometheus counters for the sync engine and HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultNamespace = "starleague"
	defaultSubsystem = "sync"
)

// Manager owns one registry. A nil *Manager is a valid no-op recorder.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	notifications      *prometheus.CounterVec
	malformedSnapshots *prometheus.CounterVec
	remoteReadErrors   *prometheus.CounterVec
	remoteWrites       *prometheus.CounterVec
	remoteWriteErrors  *prometheus.CounterVec
	fallbackLoads      prometheus.Counter
	cacheWriteErrors   *prometheus.CounterVec
	mirrorRecords      *prometheus.GaugeVec
	recomputeDuration  prometheus.Histogram
	circuitState       *prometheus.GaugeVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

type Option func(*Manager)

func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: defaultNamespace,
		subsystem: defaultSubsystem,
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.init()
	return m
}

func (m *Manager) init() {
	auto := promauto.With(m.registry)

	m.notifications = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "notifications_total",
		Help: "Remote change notifications applied to the mirror.",
	}, []string{"collection"})
	m.malformedSnapshots = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "malformed_snapshots_total",
		Help: "Snapshots that were neither an array nor a keyed map.",
	}, []string{"collection"})
	m.remoteReadErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "remote_read_errors_total",
		Help: "Failed reads against the remote store.",
	}, []string{"collection"})
	m.remoteWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "remote_writes_total",
		Help: "Remote writes dispatched.",
	}, []string{"collection"})
	m.remoteWriteErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "remote_write_errors_total",
		Help: "Remote writes that failed or timed out.",
	}, []string{"collection"})
	m.fallbackLoads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "fallback_loads_total",
		Help: "Sessions that loaded from the local cache instead of the remote store.",
	})
	m.cacheWriteErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "local_cache_write_errors_total",
		Help: "Local cache writes that were dropped.",
	}, []string{"key"})
	m.mirrorRecords = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "mirror_records",
		Help: "Records currently held by the mirror.",
	}, []string{"collection"})
	m.recomputeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "recompute_duration_seconds",
		Help:    "Time spent recomputing standings and the fixture view.",
		Buckets: m.buckets,
	})
	m.circuitState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "circuit_open",
		Help: "1 while the dependency circuit breaker is open or half-open.",
	}, []string{"dependency"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name: "requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name:    "request_duration_seconds",
		Help:    "HTTP request duration.",
		Buckets: m.buckets,
	}, []string{"route", "method"})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Manager) IncNotification(collection string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(collection).Inc()
}

func (m *Manager) IncMalformedSnapshot(collection string) {
	if m == nil {
		return
	}
	m.malformedSnapshots.WithLabelValues(collection).Inc()
}

func (m *Manager) IncRemoteReadError(collection string) {
	if m == nil {
		return
	}
	m.remoteReadErrors.WithLabelValues(collection).Inc()
}

func (m *Manager) IncRemoteWrite(collection string) {
	if m == nil {
		return
	}
	m.remoteWrites.WithLabelValues(collection).Inc()
}

func (m *Manager) IncRemoteWriteError(collection string) {
	if m == nil {
		return
	}
	m.remoteWriteErrors.WithLabelValues(collection).Inc()
}

func (m *Manager) IncFallbackLoad() {
	if m == nil {
		return
	}
	m.fallbackLoads.Inc()
}

func (m *Manager) IncCacheWriteError(key string) {
	if m == nil {
		return
	}
	m.cacheWriteErrors.WithLabelValues(key).Inc()
}

func (m *Manager) SetMirrorRecords(collection string, n int) {
	if m == nil {
		return
	}
	m.mirrorRecords.WithLabelValues(collection).Set(float64(n))
}

func (m *Manager) ObserveRecompute(d time.Duration) {
	if m == nil {
		return
	}
	m.recomputeDuration.Observe(d.Seconds())
}

func (m *Manager) SetCircuitOpen(dependency string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.circuitState.WithLabelValues(dependency).Set(v)
}

func (m *Manager) ObserveHTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
