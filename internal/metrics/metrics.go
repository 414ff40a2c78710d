// Package metrics holds the prometheus instrumentation for the
// bound-witness negotiation path. Non-goals in the core spec exclude
// consensus/ordering claims, not observability.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the counters, histogram and gauge a session or
// repository instance reports to. The zero value is not usable; use New.
type Metrics struct {
	NegotiationsStarted  prometheus.Counter
	NegotiationsComplete prometheus.Counter
	NegotiationsAborted  *prometheus.CounterVec
	RoundTripLatency     prometheus.Histogram
	RepositoryIndex      prometheus.Gauge
}

// New registers and returns a Metrics bundle on the given registerer.
// Passing prometheus.NewRegistry() isolates metrics per test.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NegotiationsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "xyo",
			Subsystem: "originchain",
			Name:      "negotiations_started_total",
			Help:      "Bound-witness negotiations begun.",
		}),
		NegotiationsComplete: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "xyo",
			Subsystem: "originchain",
			Name:      "negotiations_completed_total",
			Help:      "Bound-witness negotiations that produced a block.",
		}),
		NegotiationsAborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xyo",
			Subsystem: "originchain",
			Name:      "negotiations_aborted_total",
			Help:      "Bound-witness negotiations aborted, by error kind.",
		}, []string{"kind"}),
		RoundTripLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "xyo",
			Subsystem: "originchain",
			Name:      "zigzag_round_trip_seconds",
			Help:      "Wall-clock duration of a full zig-zag exchange.",
			Buckets:   prometheus.DefBuckets,
		}),
		RepositoryIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "xyo",
			Subsystem: "originchain",
			Name:      "repository_index",
			Help:      "Current pending-block index of the local origin chain.",
		}),
	}
	reg.MustRegister(
		m.NegotiationsStarted,
		m.NegotiationsComplete,
		m.NegotiationsAborted,
		m.RoundTripLatency,
		m.RepositoryIndex,
	)
	return m
}

// NewNoOp returns a Metrics bundle registered on a private registry, for
// callers (tests, CLI dry-runs) that don't want to touch the default
// registry.
func NewNoOp() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveSince records d = time.Since(start) on the round-trip histogram.
func (m *Metrics) ObserveSince(start time.Time) {
	m.RoundTripLatency.Observe(time.Since(start).Seconds())
}
