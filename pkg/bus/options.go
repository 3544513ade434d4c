package bus

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger. Default: slog.Default() scoped to "bus".
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithDebug enables per-subscribe and per-publish debug logging.
func WithDebug(enabled bool) Option {
	return func(b *Bus) {
		b.debug = enabled
	}
}

// WithErrorSink routes handler faults to sink instead of the log.
func WithErrorSink(sink ErrorSink) Option {
	return func(b *Bus) {
		b.sink = sink
	}
}

// WithMetrics records publish/delivery/panic counters on rec.
func WithMetrics(rec MetricsRecorder) Option {
	return func(b *Bus) {
		b.metrics = rec
	}
}

// WithTracer creates a span per Publish call covering the full
// synchronous delivery loop.
func WithTracer(tracer trace.Tracer) Option {
	return func(b *Bus) {
		b.tracer = tracer
	}
}

// WithTap invokes fn after every completed publish. The inspector uses
// this to stream bus traffic to debug clients.
func WithTap(fn func(ch Channel, payload any)) Option {
	return func(b *Bus) {
		b.tap = fn
	}
}
