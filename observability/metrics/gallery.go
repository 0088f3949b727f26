package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// GalleryMetrics tracks staking, settlement and reward distribution.
type GalleryMetrics struct {
	staked        *prometheus.CounterVec
	chops         *prometheus.CounterVec
	chopRewards   *prometheus.CounterVec
	unclaimed     *prometheus.GaugeVec
	tickEmissions *prometheus.CounterVec
	tickWinners   *prometheus.GaugeVec
	roundingDust  *prometheus.CounterVec
	evictions     *prometheus.CounterVec
}

var (
	galleryOnce     sync.Once
	galleryRegistry *GalleryMetrics
)

func Gallery() *GalleryMetrics {
	galleryOnce.Do(func() {
		galleryRegistry = &GalleryMetrics{
			staked: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "gallery_staked_points_total",
				Help: "Points frozen into gems per community and polarity.",
			}, []string{"symbol", "polarity"}),
			chops: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "gallery_gem_chops_total",
				Help: "Gems settled per community and trigger.",
			}, []string{"symbol", "trigger"}),
			chopRewards: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "gallery_chop_rewards_total",
				Help: "Reward points paid out by gem settlement.",
			}, []string{"symbol"}),
			unclaimed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "gallery_unclaimed_reward",
				Help: "Reward orphaned by destroyed mosaics per community.",
			}, []string{"symbol"}),
			tickEmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "gallery_tick_emission_total",
				Help: "Points distributed by reward ticks.",
			}, []string{"symbol"}),
			tickWinners: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "gallery_tick_winners",
				Help: "Number of mosaics rewarded by the latest tick.",
			}, []string{"symbol"}),
			roundingDust: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "gallery_tick_rounding_remainder_total",
				Help: "Rounding remainder absorbed by the top mosaic.",
			}, []string{"symbol"}),
			evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "gallery_evictions_total",
				Help: "Gems chopped to make room for new stakes.",
			}, []string{"symbol", "kind"}),
		}
		prometheus.MustRegister(
			galleryRegistry.staked,
			galleryRegistry.chops,
			galleryRegistry.chopRewards,
			galleryRegistry.unclaimed,
			galleryRegistry.tickEmissions,
			galleryRegistry.tickWinners,
			galleryRegistry.roundingDust,
			galleryRegistry.evictions,
		)
	})
	return galleryRegistry
}

func (m *GalleryMetrics) ObserveStake(symbol string, damn bool, points int64) {
	if m == nil || points <= 0 {
		return
	}
	polarity := "positive"
	if damn {
		polarity = "damn"
	}
	m.staked.WithLabelValues(symbol, polarity).Add(float64(points))
}

func (m *GalleryMetrics) ObserveChop(symbol, trigger string, reward int64) {
	if m == nil {
		return
	}
	if trigger == "" {
		trigger = "user"
	}
	m.chops.WithLabelValues(symbol, trigger).Inc()
	if reward > 0 {
		m.chopRewards.WithLabelValues(symbol).Add(float64(reward))
	}
}

func (m *GalleryMetrics) SetUnclaimed(symbol string, amount int64) {
	if m == nil {
		return
	}
	m.unclaimed.WithLabelValues(symbol).Set(float64(amount))
}

func (m *GalleryMetrics) ObserveTick(symbol string, emitted int64, winners int, remainder int64) {
	if m == nil {
		return
	}
	if emitted > 0 {
		m.tickEmissions.WithLabelValues(symbol).Add(float64(emitted))
	}
	m.tickWinners.WithLabelValues(symbol).Set(float64(winners))
	if remainder > 0 {
		m.roundingDust.WithLabelValues(symbol).Add(float64(remainder))
	}
}

func (m *GalleryMetrics) ObserveEviction(symbol, kind string) {
	if m == nil {
		return
	}
	m.evictions.WithLabelValues(symbol, kind).Inc()
}
