package statesync

import (
	"log/slog"
)

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Default: slog.Default() scoped to
// "statesync".
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records sync counters on rec.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Service) {
		s.metrics = rec
	}
}
