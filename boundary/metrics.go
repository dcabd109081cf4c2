package boundary

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the Prometheus instruments of the wrapper.
type Metrics struct {
	Calls *prometheus.CounterVec
}

// NewMetrics registers the boundary instruments on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Calls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_calls_total",
			Help:      "Boundary operations by name and outcome.",
		}, []string{"operation", "outcome"}),
	}
}

func (m *Metrics) observe(op string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.Calls.WithLabelValues(op, outcome).Inc()
}
