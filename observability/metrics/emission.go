package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EmissionMetrics tracks periodic point emission.
type EmissionMetrics struct {
	issued  *prometheus.CounterVec
	lastRun *prometheus.GaugeVec
}

var (
	emissionOnce     sync.Once
	emissionRegistry *EmissionMetrics
)

func Emission() *EmissionMetrics {
	emissionOnce.Do(func() {
		emissionRegistry = &EmissionMetrics{
			issued: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "emission_issued_points_total",
				Help: "Points issued by periodic emission per community and receiver.",
			}, []string{"symbol", "receiver"}),
			lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "emission_last_run_timestamp",
				Help: "Unix time of the latest emission per community and receiver.",
			}, []string{"symbol", "receiver"}),
		}
		prometheus.MustRegister(emissionRegistry.issued, emissionRegistry.lastRun)
	})
	return emissionRegistry
}

func (m *EmissionMetrics) ObserveIssue(symbol, receiver string, amount, at int64) {
	if m == nil {
		return
	}
	if amount > 0 {
		m.issued.WithLabelValues(symbol, receiver).Add(float64(amount))
	}
	m.lastRun.WithLabelValues(symbol, receiver).Set(float64(at))
}
