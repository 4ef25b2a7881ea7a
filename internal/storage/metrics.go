package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks index pruning effectiveness.
type Metrics struct {
	PartsEvaluated   prometheus.Counter
	PartsPruned      prometheus.Counter
	GranulesTotal    prometheus.Counter
	GranulesSelected prometheus.Counter
}

// NewMetrics registers the pruning metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		PartsEvaluated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "keyprune",
			Name:      "parts_evaluated_total",
			Help:      "Number of parts evaluated against the partition key condition.",
		}),
		PartsPruned: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "keyprune",
			Name:      "parts_pruned_total",
			Help:      "Number of parts skipped by partition pruning.",
		}),
		GranulesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "keyprune",
			Name:      "granules_total",
			Help:      "Number of granules considered during mark range selection.",
		}),
		GranulesSelected: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "keyprune",
			Name:      "granules_selected_total",
			Help:      "Number of granules surviving mark range selection.",
		}),
	}
}

func (m *Metrics) addParts(evaluated, pruned int) {
	if m == nil {
		return
	}
	m.PartsEvaluated.Add(float64(evaluated))
	m.PartsPruned.Add(float64(pruned))
}

func (m *Metrics) addGranules(total, selected int) {
	if m == nil {
		return
	}
	m.GranulesTotal.Add(float64(total))
	m.GranulesSelected.Add(float64(selected))
}
