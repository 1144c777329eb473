package eventbus

import (
	"sync"

	"github.com/nova-webgames/arena/pkg/core"
)

// Recorder captures published events in delivery order.
type Recorder struct {
	mu     sync.Mutex
	events []core.Event
	subs   []*Subscription
}

// NewRecorder subscribes to the given kinds, or to every kind when none is given.
func NewRecorder(b *Bus, kinds ...core.EventKind) *Recorder {
	if len(kinds) == 0 {
		kinds = core.AllKinds
	}
	r := &Recorder{}
	for _, k := range kinds {
		r.subs = append(r.subs, b.Subscribe(k, r.record))
	}
	return r
}

func (r *Recorder) record(e core.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Event(nil), r.events...)
}

// OfKind returns the recorded events of one kind.
func (r *Recorder) OfKind(kind core.EventKind) []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.Event
	for _, e := range r.events {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []core.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind()
	}
	return out
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Stop unsubscribes the recorder.
func (r *Recorder) Stop() {
	for _, s := range r.subs {
		s.Unsubscribe()
	}
}
