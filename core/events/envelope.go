package events

import "mosaicchain/core/types"

type envelope struct {
	evt *types.Event
}

func (e envelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e envelope) Event() *types.Event { return e.evt }

// Wrap converts a raw payload into an emitter-friendly event.
func Wrap(evt *types.Event) Event { return envelope{evt: evt} }
