package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// CurveMetrics tracks bonding-curve conversions.
type CurveMetrics struct {
	conversions *prometheus.CounterVec
	volume      *prometheus.CounterVec
	fees        *prometheus.CounterVec
}

var (
	curveOnce     sync.Once
	curveRegistry *CurveMetrics
)

func Curve() *CurveMetrics {
	curveOnce.Do(func() {
		curveRegistry = &CurveMetrics{
			conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "point_conversions_total",
				Help: "Count of buy and sell conversions per community.",
			}, []string{"symbol", "direction"}),
			volume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "point_conversion_reserve_volume",
				Help: "Reserve currency moved through the curve per community.",
			}, []string{"symbol", "direction"}),
			fees: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "point_conversion_fees",
				Help: "Reserve currency retained as sell fees per community.",
			}, []string{"symbol"}),
		}
		prometheus.MustRegister(curveRegistry.conversions, curveRegistry.volume, curveRegistry.fees)
	})
	return curveRegistry
}

func (m *CurveMetrics) ObserveConversion(symbol, direction string, reserve, fee int64) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(symbol, direction).Inc()
	if reserve > 0 {
		m.volume.WithLabelValues(symbol, direction).Add(float64(reserve))
	}
	if fee > 0 {
		m.fees.WithLabelValues(symbol).Add(float64(fee))
	}
}
