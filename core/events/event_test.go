package events

import (
	"testing"

	"mosaicchain/core/types"
)

func TestRecorderFilterAndDrain(t *testing.T) {
	rec := &Recorder{}
	rec.Emit(Wrap(&types.Event{Type: "gallery.gem.chop", Attributes: map[string]string{"reward": "10"}}))
	rec.Emit(Wrap(&types.Event{Type: "gallery.mosaic.state"}))
	rec.Emit(nil)

	chops := rec.Filter("gallery.gem.chop")
	if len(chops) != 1 || chops[0].Attr("reward") != "10" {
		t.Fatalf("unexpected chop events: %+v", chops)
	}
	if got := len(rec.Drain()); got != 2 {
		t.Fatalf("expected 2 drained events, got %d", got)
	}
	if got := len(rec.Events()); got != 0 {
		t.Fatalf("expected empty recorder after drain, got %d", got)
	}
}

func TestFanoutSkipsNil(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Fanout{a, nil, b}.Emit(Wrap(&types.Event{Type: "x"}))
	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Fatalf("expected both recorders to receive the event")
	}
}
