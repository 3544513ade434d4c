package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fragsync-dev/fragsync/pkg/snapshot"
	"github.com/fragsync-dev/fragsync/pkg/state"
)

// persistTimeout bounds a single background snapshot write.
const persistTimeout = 5 * time.Second

// Selector extracts the watched value from a state snapshot.
type Selector func(state.Snapshot) any

// MetricsRecorder receives store counters. telemetry.Metrics implements
// it; a nil recorder disables recording.
type MetricsRecorder interface {
	RecordMutation(op string)
	RecordSnapshotWrite()
	RecordSnapshotWriteError()
}

type watcher struct {
	id   uint64
	sel  Selector
	fn   func(value any)
	last any
}

// Store is the canonical state owner. Construct with New; the zero
// value is not usable. Methods are safe for concurrent use, and
// subscription callbacks may themselves issue mutations.
type Store struct {
	mu sync.Mutex
	st state.Snapshot

	watchMu sync.Mutex
	watches []*watcher
	nextID  uint64

	logger  *slog.Logger
	backend snapshot.Store
	metrics MetricsRecorder
	tracer  trace.Tracer

	// persistMu serializes background writes so an older snapshot can
	// never overwrite a newer one.
	persistMu     sync.Mutex
	persistSeq    uint64
	lastPersisted uint64
	persistErr    func(error)
}

// New creates a store holding the default empty state.
func New(opts ...Option) *Store {
	s := &Store{
		st:     state.Default(),
		logger: slog.Default().With("component", "store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.persistErr == nil {
		s.persistErr = func(err error) {
			s.logger.Warn("snapshot write failed", "error", err)
		}
	}
	return s
}

// Snapshot returns the complete current state by value. The copy is
// deep; holding it never aliases future mutations.
func (s *Store) Snapshot() state.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone()
}

// Restore replaces the state wholesale. It exists for startup
// rehydration and must run before anything subscribes; it does not
// notify and does not persist. Cart aggregates are recomputed so a
// hand-edited snapshot cannot smuggle in drifted values.
func (s *Store) Restore(snap state.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st = snap.Clone()
	s.st.CartCount = state.CartCountOf(s.st.Cart)
	s.st.CartTotal = state.CartTotalOf(s.st.Cart)
}

// Rehydrate loads the persisted snapshot from the backend, if any, and
// restores it. Backend or decode failures are logged and leave the
// in-memory defaults authoritative; they are never fatal.
func (s *Store) Rehydrate(ctx context.Context) {
	if s.backend == nil {
		return
	}

	data, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn("snapshot load failed, starting from defaults", "error", err)
		return
	}
	if data == nil {
		return
	}

	snap, err := snapshot.Decode(data)
	if err != nil {
		s.logger.Warn("snapshot decode failed, starting from defaults", "error", err)
		return
	}
	s.Restore(snap)
}

// Reset restores all entities to their empty defaults, notifies, and
// persists the default state.
func (s *Store) Reset() {
	s.mutate("reset", func(st *state.Snapshot) {
		*st = state.Default()
	})
}

// Subscribe registers fn to run whenever the value returned by sel
// differs (by value, not reference) from its previous result,
// immediately after the mutation that changed it. The current value is
// the baseline; there is no initial call. The returned capability
// removes the subscription.
func (s *Store) Subscribe(sel Selector, fn func(value any)) func() {
	if sel == nil || fn == nil {
		return func() {}
	}

	w := &watcher{sel: sel, fn: fn, last: sel(s.Snapshot())}

	s.watchMu.Lock()
	s.nextID++
	w.id = s.nextID
	s.watches = append(s.watches, w)
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		for i, cur := range s.watches {
			if cur.id == w.id {
				s.watches = append(s.watches[:i:i], s.watches[i+1:]...)
				return
			}
		}
	}
}

// SubscribeTo is the typed convenience form of Store.Subscribe.
func SubscribeTo[T any](s *Store, sel func(state.Snapshot) T, fn func(T)) func() {
	return s.Subscribe(
		func(snap state.Snapshot) any { return sel(snap) },
		func(value any) { fn(value.(T)) },
	)
}

// mutate runs op under the state lock, then notifies watchers and
// kicks off the background persistence write. It returns after all
// synchronous effects (including watcher callbacks) have completed.
func (s *Store) mutate(op string, fn func(st *state.Snapshot)) {
	var span trace.Span
	if s.tracer != nil {
		_, span = s.tracer.Start(context.Background(), "store."+op,
			trace.WithAttributes(attribute.String("store.op", op)))
		defer span.End()
	}

	s.mu.Lock()
	fn(&s.st)
	snap := s.st.Clone()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordMutation(op)
	}

	s.notify()
	s.persistAsync(snap)
}

// notify runs every watcher whose selected value changed. It iterates
// over a stable copy of the watcher list, so callbacks may subscribe,
// unsubscribe, or mutate without corrupting the loop. Each watcher
// selects from the state as it stands at fire time, not from the
// snapshot that triggered the pass: a callback earlier in the pass may
// have mutated again, and firing the remaining watchers with the
// superseded value would leave them holding state the store has
// already moved past.
func (s *Store) notify() {
	s.watchMu.Lock()
	watches := make([]*watcher, len(s.watches))
	copy(watches, s.watches)
	s.watchMu.Unlock()

	for _, w := range watches {
		value := w.sel(s.Snapshot())
		if valuesEqual(w.last, value) {
			continue
		}
		w.last = value
		w.fn(value)
	}
}

// persistAsync writes the persistable subset in the background. The
// mutation path never waits on it; failures go to the error handler
// and the metrics recorder.
func (s *Store) persistAsync(snap state.Snapshot) {
	if s.backend == nil {
		return
	}

	s.persistMu.Lock()
	s.persistSeq++
	seq := s.persistSeq
	s.persistMu.Unlock()

	go func() {
		data, err := snapshot.Encode(snap)
		if err != nil {
			s.recordPersistFailure(err)
			return
		}

		s.persistMu.Lock()
		defer s.persistMu.Unlock()
		if seq <= s.lastPersisted {
			// A newer snapshot already landed; dropping this one keeps
			// the backend from going backwards in time.
			return
		}
		s.lastPersisted = seq

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.backend.Save(ctx, data); err != nil {
			s.recordPersistFailure(err)
			return
		}
		if s.metrics != nil {
			s.metrics.RecordSnapshotWrite()
		}
	}()
}

func (s *Store) recordPersistFailure(err error) {
	if s.metrics != nil {
		s.metrics.RecordSnapshotWriteError()
	}
	s.persistErr(err)
}
