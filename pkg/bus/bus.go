package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Handler receives a channel's payload. The payload is passed by
// reference semantics: handlers must treat it as read-only.
type Handler func(payload any)

// ErrorSink receives handler faults. The default sink logs them.
type ErrorSink func(ch Channel, err error)

// MetricsRecorder receives bus counters. telemetry.Metrics implements
// it; a nil recorder disables recording.
type MetricsRecorder interface {
	RecordPublish(channel string)
	RecordDelivery(channel string)
	RecordHandlerPanic(channel string)
}

type listener struct {
	id   uint64
	fn   Handler
	once bool
}

// Bus routes messages to subscribers. The zero value is not usable;
// construct with New. All methods are safe for concurrent use and safe
// to call re-entrantly from inside a handler.
type Bus struct {
	mu        sync.Mutex
	listeners map[Channel][]listener
	nextID    uint64

	logger  *slog.Logger
	debug   bool
	sink    ErrorSink
	metrics MetricsRecorder
	tracer  trace.Tracer
	tap     func(ch Channel, payload any)
}

// New creates a bus with the given options.
func New(opts ...Option) *Bus {
	b := &Bus{
		listeners: make(map[Channel][]listener),
		logger:    slog.Default().With("component", "bus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.sink == nil {
		b.sink = func(ch Channel, err error) {
			b.logger.Error("handler fault", "channel", string(ch), "error", err)
		}
	}
	return b
}

// Subscribe registers fn for ch and returns a capability that removes
// exactly that registration. Multiple subscriptions to the same channel
// are independent and all fire, in subscription order.
func (b *Bus) Subscribe(ch Channel, fn Handler) func() {
	return b.subscribe(ch, fn, false)
}

// SubscribeOnce registers fn for a single delivery. The returned
// capability cancels the subscription if invoked before that delivery.
func (b *Bus) SubscribeOnce(ch Channel, fn Handler) func() {
	return b.subscribe(ch, fn, true)
}

func (b *Bus) subscribe(ch Channel, fn Handler, once bool) func() {
	if b == nil {
		slog.Default().Warn("bus missing, subscribe ignored", "channel", string(ch))
		return func() {}
	}
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[ch] = append(b.listeners[ch], listener{id: id, fn: fn, once: once})
	b.mu.Unlock()

	if b.debug {
		b.logger.Debug("subscribed", "channel", string(ch), "once", once)
	}

	return func() { b.remove(ch, id) }
}

// remove drops the listener with the given id, preserving the order of
// the remaining listeners.
func (b *Bus) remove(ch Channel, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.listeners[ch]
	for i, l := range subs {
		if l.id == id {
			b.listeners[ch] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers payload to every handler currently registered for
// ch, in subscription order, and returns once all of them have run.
// Delivery iterates over a stable copy of the listener list, so
// handlers may subscribe or unsubscribe (including themselves) without
// corrupting the in-flight loop.
func (b *Bus) Publish(ch Channel, payload any) {
	if b == nil {
		slog.Default().Warn("bus missing, publish dropped", "channel", string(ch))
		return
	}

	b.mu.Lock()
	subs := b.listeners[ch]
	snapshot := make([]listener, len(subs))
	copy(snapshot, subs)
	// Once-listeners self-unregister on first delivery, before their
	// handler runs, so a re-entrant publish cannot deliver twice.
	if remaining := withoutOnce(subs); remaining != nil {
		b.listeners[ch] = remaining
	}
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.RecordPublish(string(ch))
	}
	if b.debug {
		b.logger.Debug("publish", "channel", string(ch), "listeners", len(snapshot))
	}

	var span trace.Span
	if b.tracer != nil {
		_, span = b.tracer.Start(context.Background(), "bus.publish",
			trace.WithAttributes(
				attribute.String("bus.channel", string(ch)),
				attribute.Int("bus.listeners", len(snapshot)),
			))
	}

	for _, l := range snapshot {
		b.deliver(ch, l, payload)
	}

	if span != nil {
		span.End()
	}
	if b.tap != nil {
		b.tap(ch, payload)
	}
}

// deliver invokes one handler with panic isolation.
func (b *Bus) deliver(ch Channel, l listener, payload any) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.RecordHandlerPanic(string(ch))
			}
			b.sink(ch, fmt.Errorf("handler panic on %s: %v", ch, r))
		}
	}()

	l.fn(payload)
	if b.metrics != nil {
		b.metrics.RecordDelivery(string(ch))
	}
}

// UnsubscribeAll drops every handler for the given channels, or for all
// channels when none are given.
func (b *Bus) UnsubscribeAll(channels ...Channel) {
	if b == nil {
		slog.Default().Warn("bus missing, unsubscribeAll ignored")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(channels) == 0 {
		b.listeners = make(map[Channel][]listener)
		return
	}
	for _, ch := range channels {
		delete(b.listeners, ch)
	}
}

// Listeners reports the number of registered handlers per channel.
// Intended for debugging and the inspector.
func (b *Bus) Listeners() map[Channel]int {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[Channel]int, len(b.listeners))
	for ch, subs := range b.listeners {
		if len(subs) > 0 {
			out[ch] = len(subs)
		}
	}
	return out
}

// withoutOnce returns subs with once-listeners removed, or nil when
// there is nothing to strip.
func withoutOnce(subs []listener) []listener {
	stripped := false
	for _, l := range subs {
		if l.once {
			stripped = true
			break
		}
	}
	if !stripped {
		return nil
	}

	out := make([]listener, 0, len(subs))
	for _, l := range subs {
		if !l.once {
			out = append(out, l)
		}
	}
	return out
}
