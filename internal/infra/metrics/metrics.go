package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cinema"

// Metrics groups every collector the service exports. All methods are no-ops
// on a nil receiver so components can be built without it in tests.
type Metrics struct {
	registry *prometheus.Registry

	lockAcquire     *prometheus.CounterVec
	holdsCreated    prometheus.Counter
	holdConflicts   *prometheus.CounterVec
	holdsExpired    prometheus.Counter
	reaperFailures  prometheus.Counter
	reaperDuration  prometheus.Histogram
	eventsPublished *prometheus.CounterVec
	duplicateReqs   prometheus.Counter
	httpDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		lockAcquire: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_acquire_total",
			Help:      "Lock acquisition attempts by result.",
		}, []string{"result"}),
		holdsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holds_created_total",
			Help:      "Holds successfully created.",
		}),
		holdConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hold_conflicts_total",
			Help:      "Hold requests rejected with a conflict, by reason.",
		}, []string{"reason"}),
		holdsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "holds_expired_total",
			Help:      "Holds expired by the reaper.",
		}),
		reaperFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reaper_failures_total",
			Help:      "Holds the reaper failed to expire.",
		}),
		reaperDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reaper_sweep_duration_seconds",
			Help:      "Duration of one reaper sweep.",
			Buckets:   prometheus.DefBuckets,
		}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Broker publish attempts by topic and result.",
		}, []string{"topic", "result"}),
		duplicateReqs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_requests_total",
			Help:      "Requests rejected by the debounce window.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.lockAcquire,
		m.holdsCreated,
		m.holdConflicts,
		m.holdsExpired,
		m.reaperFailures,
		m.reaperDuration,
		m.eventsPublished,
		m.duplicateReqs,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) LockAcquire(result string) {
	if m == nil {
		return
	}
	m.lockAcquire.WithLabelValues(result).Inc()
}

func (m *Metrics) HoldCreated() {
	if m == nil {
		return
	}
	m.holdsCreated.Inc()
}

func (m *Metrics) HoldConflict(reason string) {
	if m == nil {
		return
	}
	m.holdConflicts.WithLabelValues(reason).Inc()
}

func (m *Metrics) HoldsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.holdsExpired.Add(float64(n))
}

func (m *Metrics) ReaperFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reaperFailures.Add(float64(n))
}

func (m *Metrics) ObserveReaperSweep(seconds float64) {
	if m == nil {
		return
	}
	m.reaperDuration.Observe(seconds)
}

func (m *Metrics) EventPublished(topic, result string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(topic, result).Inc()
}

func (m *Metrics) DuplicateRequest() {
	if m == nil {
		return
	}
	m.duplicateReqs.Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}
