package fragment

import "log/slog"

// Option configures a Fragment handle.
type Option func(*Fragment)

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fragment) {
		if logger != nil {
			f.logger = logger.With("component", "fragment", "fragment", f.name)
		}
	}
}
