package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "base_swiper"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	registry *prometheus.Registry

	// Feed metrics
	FetchesTotal *prometheus.CounterVec
	ItemsLoaded  *prometheus.CounterVec
	Exhaustions  prometheus.Counter
	StaleBatches *prometheus.CounterVec
	RefillsTotal prometheus.Counter

	// Deck metrics
	DecisionsTotal *prometheus.CounterVec
	HapticFailures prometheus.Counter
	CaughtUpTotal  prometheus.Counter

	// Session metrics
	SessionsActive prometheus.Gauge

	// Journal metrics
	JournalFlushes *prometheus.CounterVec
}

// New creates a Metrics instance registered on its own registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FetchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetches_total",
			Help:      "Explore fetches by category and result (ok, empty, error)",
		}, []string{"category", "result"}),
		ItemsLoaded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "items_loaded_total",
			Help:      "Cards produced by explore fetches by category",
		}, []string{"category"}),
		Exhaustions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "exhaustions_total",
			Help:      "Times the repeatable category stopped yielding new coins",
		}),
		StaleBatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "stale_batches_total",
			Help:      "Batches discarded because a reset started a new generation",
		}, []string{"component"}),
		RefillsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deck",
			Name:      "refills_total",
			Help:      "Refill fetches triggered by low remaining depth",
		}),
		DecisionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deck",
			Name:      "decisions_total",
			Help:      "Swipe decisions by direction",
		}, []string{"direction"}),
		HapticFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deck",
			Name:      "haptic_failures_total",
			Help:      "Haptic notifications that failed and were swallowed",
		}),
		CaughtUpTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deck",
			Name:      "caught_up_total",
			Help:      "Times a deck reached the all-caught-up state",
		}),
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Open swipe sessions",
		}),
		JournalFlushes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "flushes_total",
			Help:      "Decision journal flushes by result",
		}, []string{"result"}),
	}
}

// Handler returns the HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// FetchCompleted records an explore fetch outcome.
func (m *Metrics) FetchCompleted(category, result string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(category, result).Inc()
}

// ItemsLoadedAdd records cards produced for a category.
func (m *Metrics) ItemsLoadedAdd(category string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ItemsLoaded.WithLabelValues(category).Add(float64(n))
}

// FeedExhausted records a feed running dry.
func (m *Metrics) FeedExhausted() {
	if m == nil {
		return
	}
	m.Exhaustions.Inc()
}

// StaleBatch records a discarded result.
func (m *Metrics) StaleBatch(component string) {
	if m == nil {
		return
	}
	m.StaleBatches.WithLabelValues(component).Inc()
}

// RefillTriggered records a refill fetch.
func (m *Metrics) RefillTriggered() {
	if m == nil {
		return
	}
	m.RefillsTotal.Inc()
}

// Decision records a swipe.
func (m *Metrics) Decision(direction string) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(direction).Inc()
}

// HapticFailed records a swallowed haptic error.
func (m *Metrics) HapticFailed() {
	if m == nil {
		return
	}
	m.HapticFailures.Inc()
}

// CaughtUp records a deck reaching the terminal state.
func (m *Metrics) CaughtUp() {
	if m == nil {
		return
	}
	m.CaughtUpTotal.Inc()
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

// JournalFlushed records a decision journal flush.
func (m *Metrics) JournalFlushed(result string) {
	if m == nil {
		return
	}
	m.JournalFlushes.WithLabelValues(result).Inc()
}
