package driver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "treesync"

// Metrics holds the Prometheus collectors shared by all drivers.
type Metrics struct {
	// PassesTotal counts passes by session and result (ok, error, panic).
	PassesTotal *prometheus.CounterVec
	// PassDurationSeconds measures pass latency by session.
	PassDurationSeconds *prometheus.HistogramVec
	// MutationsTotal counts adapter mutations by session and call.
	MutationsTotal *prometheus.CounterVec
	// LiveNodes tracks the size of each session's live tree.
	LiveNodes *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PassesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "passes_total",
			Help:      "Reconciliation passes by outcome.",
		}, []string{"session", "result"}),
		PassDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of reconciliation passes.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"session"}),
		MutationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mutations_total",
			Help:      "Mutating adapter calls issued by reconciliation.",
		}, []string{"session", "call"}),
		LiveNodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "live_nodes",
			Help:      "Nodes in the live tree after the last pass.",
		}, []string{"session"}),
	}
}

// Observe records a finished pass and the resulting live tree size.
func (m *Metrics) Observe(r PassReport, liveNodes int) {
	if m == nil {
		return
	}
	m.PassesTotal.WithLabelValues(r.Session, r.Result()).Inc()
	m.PassDurationSeconds.WithLabelValues(r.Session).Observe(r.Duration.Seconds())

	calls := map[string]int{
		"create": r.Stats.Creates,
		"update": r.Stats.Updates,
		"remove": r.Stats.Removes,
		"insert": r.Stats.Inserts,
		"swap":   r.Stats.Swaps,
	}
	for call, n := range calls {
		if n > 0 {
			m.MutationsTotal.WithLabelValues(r.Session, call).Add(float64(n))
		}
	}
	m.LiveNodes.WithLabelValues(r.Session).Set(float64(liveNodes))
}

// Forget drops the per-session series of a closed session.
func (m *Metrics) Forget(session string) {
	if m == nil {
		return
	}
	m.PassesTotal.DeletePartialMatch(prometheus.Labels{"session": session})
	m.PassDurationSeconds.DeletePartialMatch(prometheus.Labels{"session": session})
	m.MutationsTotal.DeletePartialMatch(prometheus.Labels{"session": session})
	m.LiveNodes.DeleteLabelValues(session)
}
