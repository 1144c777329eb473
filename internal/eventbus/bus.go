// Package eventbus is the in-process publish/subscribe channel for game events.
// Dispatch is synchronous on the publisher's goroutine; there is no queueing.
package eventbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/nova-webgames/arena/pkg/core"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HandlerFunc processes one event. A returned error is logged and does not
// stop delivery to the remaining handlers.
type HandlerFunc func(core.Event) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures a Bus.
type Option func(*config)

type config struct {
	logged bool
	meter  metric.Meter
}

// Logged adds debug logging for every publish.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// WithMeter overrides the global OTel meter.
func WithMeter(m metric.Meter) Option {
	return func(c *config) {
		c.meter = m
	}
}

// Subscription identifies one registered handler. Unsubscribe removes exactly
// that handler and is safe to call more than once.
type Subscription struct {
	kind    core.EventKind
	handler HandlerFunc
	bus     *Bus
	once    sync.Once
}

// Kind returns the event kind the subscription listens to.
func (s *Subscription) Kind() core.EventKind {
	return s.kind
}

// Unsubscribe deregisters the handler. Repeated calls are no-ops.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s)
	})
}

// Bus routes events to their subscribers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[core.EventKind][]*Subscription

	logger Logger
	logged bool

	// OTEL metrics
	published metric.Int64Counter
	faults    metric.Int64Counter
}

// New creates a new Bus with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger, opts ...Option) (*Bus, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	m := cfg.meter
	if m == nil {
		m = meter()
	}

	b := &Bus{
		handlers: make(map[core.EventKind][]*Subscription),
		logger:   logger,
		logged:   cfg.logged,
	}

	var err error

	b.published, err = m.Int64Counter(
		"eventbus.events.published",
		metric.WithDescription("Total events published"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating published counter: %w", err)
	}

	b.faults, err = m.Int64Counter(
		"eventbus.handler.faults",
		metric.WithDescription("Total handler errors and panics recovered during dispatch"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating faults counter: %w", err)
	}

	return b, nil
}

// Subscribe registers h for kind. Several handlers may share a kind; they are
// called in registration order.
func (b *Bus) Subscribe(kind core.EventKind, h HandlerFunc) *Subscription {
	sub := &Subscription{kind: kind, handler: h, bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], sub)
	return sub
}

// On registers a handler typed on a concrete payload struct. The kind is
// taken from T, so registration and payload can never disagree.
func On[T core.Event](b *Bus, h func(T) error) *Subscription {
	var zero T
	kind := zero.Kind()
	return b.Subscribe(kind, func(e core.Event) error {
		ev, ok := e.(T)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", e, kind)
		}
		return h(ev)
	})
}

// Unsubscribe removes sub from kind if it is registered there.
func (b *Bus) Unsubscribe(kind core.EventKind, sub *Subscription) {
	if sub == nil || sub.bus != b || sub.kind != kind {
		return
	}
	sub.Unsubscribe()
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.handlers[sub.kind]
	for i, s := range current {
		if s != sub {
			continue
		}
		next := make([]*Subscription, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		if len(next) == 0 {
			delete(b.handlers, sub.kind)
		} else {
			b.handlers[sub.kind] = next
		}
		return
	}
}

// Publish delivers e to every handler registered for its kind at the moment
// of the call. Registrations made by handlers take effect on the next publish.
func (b *Bus) Publish(e core.Event) {
	if e == nil {
		return
	}
	kind := e.Kind()

	b.mu.RLock()
	snapshot := append([]*Subscription(nil), b.handlers[kind]...)
	b.mu.RUnlock()

	kindAttr := metric.WithAttributes(attribute.String("kind", string(kind)))
	b.published.Add(context.Background(), 1, kindAttr)

	if b.logged {
		b.logger.Debug("publishing event", "kind", kind, "handlers", len(snapshot))
	}

	for i, sub := range snapshot {
		if err := invoke(sub.handler, e); err != nil {
			b.faults.Add(context.Background(), 1, kindAttr)
			b.logger.Error("event handler failed", "kind", kind, "handler", i, "error", err)
		}
	}
}

func invoke(h HandlerFunc, e core.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(e)
}

// Clear removes all handlers for the given kinds, or every handler when no
// kind is given.
func (b *Bus) Clear(kinds ...core.EventKind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(kinds) == 0 {
		b.handlers = make(map[core.EventKind][]*Subscription)
		return
	}
	for _, k := range kinds {
		delete(b.handlers, k)
	}
}

// Count returns the number of handlers registered for kind.
func (b *Bus) Count(kind core.EventKind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind])
}

// HasSubscribers returns true if at least one handler is registered for kind.
func (b *Bus) HasSubscribers(kind core.EventKind) bool {
	return b.Count(kind) > 0
}
