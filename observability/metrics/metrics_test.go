package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func value(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	close(ch)
	var m dto.Metric
	if err := (<-ch).Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	}
	t.Fatalf("unexpected metric kind")
	return 0
}

func TestGalleryObserveChop(t *testing.T) {
	g := Gallery()
	g.ObserveChop("CHOP", "", 40)
	g.ObserveChop("CHOP", "eviction", 0)

	if got := value(t, g.chops.WithLabelValues("CHOP", "user")); got != 1 {
		t.Fatalf("user chops = %v", got)
	}
	if got := value(t, g.chops.WithLabelValues("CHOP", "eviction")); got != 1 {
		t.Fatalf("eviction chops = %v", got)
	}
	if got := value(t, g.chopRewards.WithLabelValues("CHOP")); got != 40 {
		t.Fatalf("chop rewards = %v", got)
	}
}

func TestGalleryObserveTickSkipsEmptyRemainder(t *testing.T) {
	g := Gallery()
	g.ObserveTick("TICK", 1000, 3, 0)
	g.ObserveTick("TICK", 100, 3, 1)

	if got := value(t, g.tickEmissions.WithLabelValues("TICK")); got != 1100 {
		t.Fatalf("emitted = %v", got)
	}
	if got := value(t, g.roundingDust.WithLabelValues("TICK")); got != 1 {
		t.Fatalf("remainder = %v", got)
	}
	if got := value(t, g.tickWinners.WithLabelValues("TICK")); got != 3 {
		t.Fatalf("winners = %v", got)
	}
}

func TestEmissionObserveIssue(t *testing.T) {
	e := Emission()
	e.ObserveIssue("EMIT", "gallery", 0, 50)
	e.ObserveIssue("EMIT", "gallery", 7, 3650)

	if got := value(t, e.issued.WithLabelValues("EMIT", "gallery")); got != 7 {
		t.Fatalf("issued = %v", got)
	}
	if got := value(t, e.lastRun.WithLabelValues("EMIT", "gallery")); got != 3650 {
		t.Fatalf("last run = %v", got)
	}
}

func TestNilCollectorsAreSafe(t *testing.T) {
	var g *GalleryMetrics
	g.ObserveStake("X", false, 1)
	g.ObserveChop("X", "user", 1)
	g.ObserveTick("X", 1, 1, 1)
	var e *EmissionMetrics
	e.ObserveIssue("X", "gallery", 1, 1)
}
