package store

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/fragsync-dev/fragsync/pkg/snapshot"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Default: slog.Default() scoped to "store".
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSnapshotStore sets the durable backend. Without one the store is
// purely in-memory.
func WithSnapshotStore(backend snapshot.Store) Option {
	return func(s *Store) {
		s.backend = backend
	}
}

// WithMetrics records mutation and snapshot-write counters on rec.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Store) {
		s.metrics = rec
	}
}

// WithTracer creates a span per mutation covering the synchronous
// notification pass.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) {
		s.tracer = tracer
	}
}

// WithPersistErrorHandler routes background snapshot-write failures to
// fn instead of the log. Tests use this to observe the fire-and-forget
// path.
func WithPersistErrorHandler(fn func(error)) Option {
	return func(s *Store) {
		if fn != nil {
			s.persistErr = fn
		}
	}
}
