package statesync

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fragsync-dev/fragsync/pkg/bus"
	"github.com/fragsync-dev/fragsync/pkg/state"
	"github.com/fragsync-dev/fragsync/pkg/store"
)

// MetricsRecorder receives synchronization counters. telemetry.Metrics
// implements it; a nil recorder disables recording.
type MetricsRecorder interface {
	RecordSyncBroadcast(entity string)
	RecordHandshake(fragment string)
	RecordUnknownSyncKind(kind string)
}

// Service wires the bus to the store. Construct with New, then call
// Start once the store is rehydrated; Stop tears every subscription
// down again.
type Service struct {
	bus   *bus.Bus
	store *store.Store

	logger  *slog.Logger
	metrics MetricsRecorder

	mu      sync.Mutex
	started bool
	unsubs  []func()
}

// New creates a service bridging b and st.
func New(b *bus.Bus, st *store.Store, opts ...Option) *Service {
	s := &Service{
		bus:    b,
		store:  st,
		logger: slog.Default().With("component", "statesync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the inbound intent handlers and the outbound store
// subscriptions. Calling Start twice is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	s.setupInbound()
	s.setupOutbound()
	s.logger.Debug("started")
}

// Stop removes every bus and store subscription registered by Start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false

	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.logger.Debug("stopped")
}

func (s *Service) track(unsub func()) {
	s.unsubs = append(s.unsubs, unsub)
}

// =============================================================================
// Outbound: store -> bus
// =============================================================================

func (s *Service) setupOutbound() {
	s.track(store.SubscribeTo(s.store,
		func(snap state.Snapshot) []state.CartLine { return snap.Cart },
		func(cart []state.CartLine) { s.broadcastCart(cart) }))

	s.track(store.SubscribeTo(s.store,
		func(snap state.Snapshot) *state.UserProfile { return snap.User },
		func(user *state.UserProfile) { s.broadcastUser(user) }))

	s.track(store.SubscribeTo(s.store,
		func(snap state.Snapshot) state.Navigation { return snap.Navigation },
		func(nav state.Navigation) { s.broadcastNavigation(nav) }))

	s.track(store.SubscribeTo(s.store,
		func(snap state.Snapshot) []state.Order { return snap.Orders },
		func(orders []state.Order) { s.broadcastOrders(orders) }))
}

func (s *Service) broadcastCart(cart []state.CartLine) {
	if s.metrics != nil {
		s.metrics.RecordSyncBroadcast("cart")
	}
	s.bus.Publish(bus.CartSync, bus.CartSyncPayload{Cart: cart, Origin: bus.OriginSync})
}

func (s *Service) broadcastUser(user *state.UserProfile) {
	if s.metrics != nil {
		s.metrics.RecordSyncBroadcast("user")
	}
	s.bus.Publish(bus.UserSync, bus.UserSyncPayload{User: user, Origin: bus.OriginSync})
}

func (s *Service) broadcastNavigation(nav state.Navigation) {
	if s.metrics != nil {
		s.metrics.RecordSyncBroadcast("navigation")
	}
	s.bus.Publish(bus.NavSync, bus.NavSyncPayload{Navigation: nav, Origin: bus.OriginSync})
}

func (s *Service) broadcastOrders(orders []state.Order) {
	if s.metrics != nil {
		s.metrics.RecordSyncBroadcast("orders")
	}
	s.bus.Publish(bus.OrdersSync, bus.OrdersSyncPayload{Orders: orders, Origin: bus.OriginSync})
}

// SyncCart republishes the current cart snapshot unconditionally.
func (s *Service) SyncCart() {
	s.broadcastCart(s.store.Snapshot().Cart)
}

// SyncUser republishes the current user snapshot unconditionally.
func (s *Service) SyncUser() {
	s.broadcastUser(s.store.Snapshot().User)
}

// SyncNavigation republishes the current navigation snapshot
// unconditionally.
func (s *Service) SyncNavigation() {
	s.broadcastNavigation(s.store.Snapshot().Navigation)
}

// SyncOrders republishes the current orders snapshot unconditionally.
func (s *Service) SyncOrders() {
	s.broadcastOrders(s.store.Snapshot().Orders)
}

// SyncAll republishes all four entity snapshots. This is the handshake
// response; it runs regardless of whether anything changed.
func (s *Service) SyncAll() {
	s.SyncCart()
	s.SyncUser()
	s.SyncNavigation()
	s.SyncOrders()
}

// ResetState restores the store to its defaults and resyncs everything.
func (s *Service) ResetState() {
	s.store.Reset()
	s.SyncAll()
}

// =============================================================================
// Inbound: bus -> store
// =============================================================================

func (s *Service) setupInbound() {
	// Cart intents.
	s.track(s.bus.Subscribe(bus.CartAdd, func(payload any) {
		if p, ok := expect[bus.CartAddPayload](s, bus.CartAdd, payload); ok {
			s.store.AddCartLine(p.Line)
		}
	}))
	s.track(s.bus.Subscribe(bus.CartRemove, func(payload any) {
		if p, ok := expect[bus.CartRemovePayload](s, bus.CartRemove, payload); ok {
			s.store.RemoveCartLine(p.ID)
		}
	}))
	s.track(s.bus.Subscribe(bus.CartUpdate, func(payload any) {
		if p, ok := expect[bus.CartUpdatePayload](s, bus.CartUpdate, payload); ok {
			s.store.SetCartLineQuantity(p.ID, p.Quantity)
		}
	}))
	s.track(s.bus.Subscribe(bus.CartClear, func(payload any) {
		if _, ok := expect[bus.CartClearPayload](s, bus.CartClear, payload); ok {
			s.store.ClearCart()
		}
	}))
	s.track(s.bus.Subscribe(bus.CartSync, func(payload any) {
		p, ok := expect[bus.CartSyncPayload](s, bus.CartSync, payload)
		if !ok || p.Origin == bus.OriginSync {
			return
		}
		s.store.SetCart(p.Cart)
	}))

	// User intents.
	s.track(s.bus.Subscribe(bus.UserLogin, func(payload any) {
		if p, ok := expect[bus.UserLoginPayload](s, bus.UserLogin, payload); ok {
			s.store.SetUser(&p.User)
		}
	}))
	s.track(s.bus.Subscribe(bus.UserLogout, func(payload any) {
		if _, ok := expect[bus.UserLogoutPayload](s, bus.UserLogout, payload); ok {
			s.store.SetUser(nil)
		}
	}))
	s.track(s.bus.Subscribe(bus.UserUpdate, func(payload any) {
		if p, ok := expect[bus.UserUpdatePayload](s, bus.UserUpdate, payload); ok {
			s.store.SetUser(&p.User)
		}
	}))
	s.track(s.bus.Subscribe(bus.UserSync, func(payload any) {
		p, ok := expect[bus.UserSyncPayload](s, bus.UserSync, payload)
		if !ok || p.Origin == bus.OriginSync {
			return
		}
		s.store.SetUser(p.User)
	}))

	// Navigation intents.
	s.track(s.bus.Subscribe(bus.NavChange, func(payload any) {
		if p, ok := expect[bus.NavChangePayload](s, bus.NavChange, payload); ok {
			s.store.SetNavigation(store.NavigationUpdate{
				Path:         &p.Path,
				ActiveModule: &p.Module,
			})
		}
	}))
	s.track(s.bus.Subscribe(bus.NavBreadcrumb, func(payload any) {
		if p, ok := expect[bus.NavBreadcrumbPayload](s, bus.NavBreadcrumb, payload); ok {
			s.store.SetBreadcrumbs(p.Breadcrumbs)
		}
	}))
	s.track(s.bus.Subscribe(bus.NavSync, func(payload any) {
		p, ok := expect[bus.NavSyncPayload](s, bus.NavSync, payload)
		if !ok || p.Origin == bus.OriginSync {
			return
		}
		s.store.ReplaceNavigation(p.Navigation)
	}))

	// Order intents.
	s.track(s.bus.Subscribe(bus.OrdersAdd, func(payload any) {
		if p, ok := expect[bus.OrdersAddPayload](s, bus.OrdersAdd, payload); ok {
			s.store.AddOrder(p.Order)
		}
	}))
	s.track(s.bus.Subscribe(bus.OrdersUpdate, func(payload any) {
		if p, ok := expect[bus.OrdersUpdatePayload](s, bus.OrdersUpdate, payload); ok {
			s.store.SetOrderStatus(p.ID, p.Status)
		}
	}))
	s.track(s.bus.Subscribe(bus.OrdersSync, func(payload any) {
		p, ok := expect[bus.OrdersSyncPayload](s, bus.OrdersSync, payload)
		if !ok || p.Origin == bus.OriginSync {
			return
		}
		s.store.SetOrders(p.Orders)
	}))

	// Generic fallback.
	s.track(s.bus.Subscribe(bus.StateSync, func(payload any) {
		if p, ok := expect[bus.StateSyncPayload](s, bus.StateSync, payload); ok {
			s.applyStateSync(p)
		}
	}))

	// Fragment lifecycle.
	s.track(s.bus.Subscribe(bus.FragmentReady, func(payload any) {
		p, _ := expect[bus.FragmentReadyPayload](s, bus.FragmentReady, payload)
		if s.metrics != nil {
			s.metrics.RecordHandshake(p.Name)
		}
		s.logger.Debug("fragment ready, resyncing", "fragment", p.Name)
		s.SyncAll()
	}))
	s.track(s.bus.Subscribe(bus.FragmentError, func(payload any) {
		if p, ok := expect[bus.FragmentErrorPayload](s, bus.FragmentError, payload); ok {
			s.logger.Error("fragment error", "fragment", p.Name, "error", p.Err)
		}
	}))
}

// applyStateSync dispatches a generic {kind, value} pair to the
// matching store setter. Unknown kinds and mismatched value types are
// logged and ignored, never fatal.
func (s *Service) applyStateSync(p bus.StateSyncPayload) {
	switch p.Kind {
	case "cart":
		if cart, ok := p.Value.([]state.CartLine); ok {
			s.store.SetCart(cart)
			return
		}
	case "user":
		switch user := p.Value.(type) {
		case *state.UserProfile:
			s.store.SetUser(user)
			return
		case state.UserProfile:
			s.store.SetUser(&user)
			return
		case nil:
			s.store.SetUser(nil)
			return
		}
	case "navigation":
		if nav, ok := p.Value.(state.Navigation); ok {
			s.store.ReplaceNavigation(nav)
			return
		}
	case "orders":
		if orders, ok := p.Value.([]state.Order); ok {
			s.store.SetOrders(orders)
			return
		}
	default:
		if s.metrics != nil {
			s.metrics.RecordUnknownSyncKind(p.Kind)
		}
		s.logger.Warn("unknown state sync kind", "kind", p.Kind)
		return
	}

	s.logger.Warn("state sync value has unexpected type",
		"kind", p.Kind, "type", typeName(p.Value))
}

// expect asserts the payload type for a channel, logging a warning on
// mismatch. The bus routes any value; only these shapes are meaningful.
func expect[T any](s *Service, ch bus.Channel, payload any) (T, bool) {
	p, ok := payload.(T)
	if !ok {
		s.logger.Warn("unexpected payload",
			"channel", string(ch), "type", typeName(payload))
	}
	return p, ok
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
