package events

import (
	"sync"

	"mosaicchain/core/types"
)

// Event represents a structured state change emitted by an engine.
type Event interface {
	EventType() string
}

// Payload is implemented by events that can render themselves as a flat
// attribute map.
type Payload interface {
	Event
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (journal, metrics).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter discards all events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Recorder buffers events until drained. The daemon uses one per request so
// events of a discarded operation never reach the journal.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

// Events returns a copy of the buffered events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Drain returns the buffered events and resets the buffer.
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

// Reset drops every buffered event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Filter returns the flattened payloads of the given type.
func (r *Recorder) Filter(eventType string) []*types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Event
	for _, evt := range r.events {
		if evt.EventType() != eventType {
			continue
		}
		if p, ok := evt.(Payload); ok {
			out = append(out, p.Event())
		}
	}
	return out
}

// Fanout forwards each event to every wrapped emitter in order.
type Fanout []Emitter

// Emit implements the Emitter interface.
func (f Fanout) Emit(evt Event) {
	for _, e := range f {
		if e != nil {
			e.Emit(evt)
		}
	}
}
