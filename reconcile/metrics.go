package reconcile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeBaseline  = "baseline"
	outcomeUnchanged = "unchanged"
	outcomeApplied   = "applied"
	outcomeFailed    = "failed"
)

// Metrics counts reconcile passes and manager calls. A nil *Metrics records
// nothing.
type Metrics struct {
	passes   *prometheus.CounterVec
	calls    *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics creates the reconcile collectors and registers them with reg.
// Pass a dedicated registry per controller to keep controllers independent.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "padsynth_reconcile_passes_total",
			Help: "Reconcile passes by outcome",
		}, []string{"outcome"}),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "padsynth_graph_calls_total",
			Help: "Audio graph manager calls issued by operation",
		}, []string{"op"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "padsynth_reconcile_duration_seconds",
			Help:    "Time spent diffing and applying one snapshot",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
	}

	for _, c := range []prometheus.Collector{m.passes, m.calls, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observePass(outcome string, d time.Duration) {
	if m == nil {
		return
	}

	m.passes.WithLabelValues(outcome).Inc()

	if outcome != outcomeBaseline {
		m.duration.Observe(d.Seconds())
	}
}

func (m *Metrics) observeCall(op string) {
	if m == nil {
		return
	}

	m.calls.WithLabelValues(op).Inc()
}
