package trie

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the Prometheus collectors a Trie publishes when
// constructed with Options.Metrics set. NewMetrics registers every
// collector against reg; callers typically pass
// prometheus.DefaultRegisterer or a test-local registry.
type Metrics struct {
	NodeCount        prometheus.GaugeFunc
	OperationsTotal  *prometheus.CounterVec
	EvictionDuration prometheus.Histogram
}

// NewMetrics registers and returns a Metrics bundle. source is queried
// on every scrape for the live node-count gauge, so it should be cheap
// (nodestore.Store.Count already is).
func NewMetrics(reg prometheus.Registerer, namespace string, source func() float64) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		NodeCount: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "node_count",
			Help:      "Number of live trie nodes, structural and value-bearing.",
		}, source),
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Trie operations partitioned by kind and outcome.",
		}, []string{"op", "outcome"}),
		EvictionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "eviction_duration_seconds",
			Help:      "Wall-clock time spent inside DropOne.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// observeEviction times fn and records its duration in
// EvictionDuration, when m is non-nil.
func (m *Metrics) observeEviction(fn func() bool) bool {
	if m == nil {
		return fn()
	}
	start := time.Now()
	ok := fn()
	m.EvictionDuration.Observe(time.Since(start).Seconds())
	return ok
}

func (m *Metrics) observeOp(op string, ok bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if ok {
		outcome = "hit"
	}
	m.OperationsTotal.WithLabelValues(op, outcome).Inc()
}
