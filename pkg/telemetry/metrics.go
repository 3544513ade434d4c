// Package telemetry wires Prometheus counters and OpenTelemetry traces
// into the bus, store, and synchronization service. One Metrics value
// satisfies the MetricsRecorder interface of all three packages, so a
// single instance can be handed to each via their WithMetrics options.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures metric registration.
type Config struct {
	// Namespace is the metrics namespace (default: "fragsync").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures metric registration.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "fragsync",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds every counter the synchronization layer emits.
//
// Metrics collected:
//   - fragsync_bus_publishes_total: Counter of publishes by channel
//   - fragsync_bus_deliveries_total: Counter of handler deliveries by channel
//   - fragsync_bus_handler_panics_total: Counter of recovered handler panics
//   - fragsync_store_mutations_total: Counter of store mutations by operation
//   - fragsync_snapshot_writes_total: Counter of snapshot persists
//   - fragsync_snapshot_write_errors_total: Counter of failed persists
//   - fragsync_sync_broadcasts_total: Counter of rebroadcasts by entity
//   - fragsync_fragment_handshakes_total: Counter of fragment:ready handshakes
//   - fragsync_unknown_sync_kinds_total: Counter of unrecognized state:sync kinds
type Metrics struct {
	publishes      *prometheus.CounterVec
	deliveries     *prometheus.CounterVec
	handlerPanics  *prometheus.CounterVec
	mutations      *prometheus.CounterVec
	snapshotWrites prometheus.Counter
	snapshotErrors prometheus.Counter
	syncBroadcasts *prometheus.CounterVec
	handshakes     *prometheus.CounterVec
	unknownKinds   *prometheus.CounterVec
}

// New registers the synchronization metrics and returns the recorder.
// Registering twice on the same registry panics (promauto semantics),
// so create one Metrics per process and share it.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		publishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "bus_publishes_total",
			Help:        "Total number of messages published, by channel",
			ConstLabels: config.ConstLabels,
		}, []string{"channel"}),

		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "bus_deliveries_total",
			Help:        "Total number of handler deliveries, by channel",
			ConstLabels: config.ConstLabels,
		}, []string{"channel"}),

		handlerPanics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "bus_handler_panics_total",
			Help:        "Total number of recovered subscriber panics, by channel",
			ConstLabels: config.ConstLabels,
		}, []string{"channel"}),

		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "store_mutations_total",
			Help:        "Total number of canonical store mutations, by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		snapshotWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "snapshot_writes_total",
			Help:        "Total number of snapshots persisted",
			ConstLabels: config.ConstLabels,
		}),

		snapshotErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "snapshot_write_errors_total",
			Help:        "Total number of failed snapshot persists",
			ConstLabels: config.ConstLabels,
		}),

		syncBroadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "sync_broadcasts_total",
			Help:        "Total number of sync rebroadcasts, by entity",
			ConstLabels: config.ConstLabels,
		}, []string{"entity"}),

		handshakes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "fragment_handshakes_total",
			Help:        "Total number of fragment ready handshakes, by fragment",
			ConstLabels: config.ConstLabels,
		}, []string{"fragment"}),

		unknownKinds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "unknown_sync_kinds_total",
			Help:        "Total number of unrecognized state:sync kinds",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
	}
}

// RecordPublish counts a message published on a channel.
func (m *Metrics) RecordPublish(channel string) {
	m.publishes.WithLabelValues(channel).Inc()
}

// RecordDelivery counts one handler invocation.
func (m *Metrics) RecordDelivery(channel string) {
	m.deliveries.WithLabelValues(channel).Inc()
}

// RecordHandlerPanic counts a recovered subscriber panic.
func (m *Metrics) RecordHandlerPanic(channel string) {
	m.handlerPanics.WithLabelValues(channel).Inc()
}

// RecordMutation counts a store mutation by operation name.
func (m *Metrics) RecordMutation(op string) {
	m.mutations.WithLabelValues(op).Inc()
}

// RecordSnapshotWrite counts a persisted snapshot.
func (m *Metrics) RecordSnapshotWrite() {
	m.snapshotWrites.Inc()
}

// RecordSnapshotWriteError counts a failed persist.
func (m *Metrics) RecordSnapshotWriteError() {
	m.snapshotErrors.Inc()
}

// RecordSyncBroadcast counts a rebroadcast of an entity's state.
func (m *Metrics) RecordSyncBroadcast(entity string) {
	m.syncBroadcasts.WithLabelValues(entity).Inc()
}

// RecordHandshake counts a fragment ready handshake.
func (m *Metrics) RecordHandshake(fragment string) {
	m.handshakes.WithLabelValues(fragment).Inc()
}

// RecordUnknownSyncKind counts an unrecognized state:sync kind.
func (m *Metrics) RecordUnknownSyncKind(kind string) {
	m.unknownKinds.WithLabelValues(kind).Inc()
}
