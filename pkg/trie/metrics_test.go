package trie

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetrics_OperationsTotalIncrements(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "revtrie_test", func() float64 { return 0 })
	tr := New(Options{MaxKey: 32, Metrics: m})

	tr.Insert([]byte("com"), 1)
	tr.Insert([]byte("com"), 2) // duplicate, rejected
	tr.Lookup([]byte("com"))

	hit := counterValue(t, m.OperationsTotal, "insert", "hit")
	miss := counterValue(t, m.OperationsTotal, "insert", "miss")
	if hit != 1 {
		t.Fatalf("insert/hit = %v, want 1", hit)
	}
	if miss != 1 {
		t.Fatalf("insert/miss = %v, want 1", miss)
	}
}

func TestMetrics_NodeCountTracksStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr := New(Options{MaxKey: 32})
	m := NewMetrics(reg, "revtrie_test2", func() float64 { return float64(tr.Count()) })
	tr.opts.Metrics = m

	tr.Insert([]byte("com"), 1)
	tr.Insert([]byte("org"), 2)

	var out dto.Metric
	if err := m.NodeCount.Write(&out); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := out.GetGauge().GetValue(); got != 2 {
		t.Fatalf("node_count = %v, want 2", got)
	}
}

func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%v): %v", labels, err)
	}
	var out dto.Metric
	if err := c.Write(&out); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return out.GetCounter().GetValue()
}
