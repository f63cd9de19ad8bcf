package stress

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tinydsa"

// Metrics are the Prometheus counters updated by a stress run.
type Metrics struct {
	Keys       prometheus.Counter
	Trials     *prometheus.CounterVec
	Failures   *prometheus.CounterVec
	Collisions *prometheus.CounterVec
}

// NewMetrics creates the stress counters and registers them with reg,
// if reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Keys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stress",
			Name:      "keys_total",
			Help:      "Key pairs generated by stress runs.",
		}),
		Trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stress",
			Name:      "trials_total",
			Help:      "Sign-and-verify trials, by message length.",
		}, []string{"length"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stress",
			Name:      "verify_failures_total",
			Help:      "Valid signatures rejected by verification, by message length.",
		}, []string{"length"}),
		Collisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stress",
			Name:      "collisions_total",
			Help:      "Signatures accepted for an unrelated random message, by message length.",
		}, []string{"length"}),
	}
	if reg != nil {
		reg.MustRegister(m.Keys, m.Trials, m.Failures, m.Collisions)
	}
	return m
}
