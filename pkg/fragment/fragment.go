package fragment

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fragsync-dev/fragsync/pkg/bus"
	"github.com/fragsync-dev/fragsync/pkg/state"
)

// Fragment is a named participant on the bus. Create one per fragment
// with New, call Ready once after initialization, and use the typed
// methods for everything else.
type Fragment struct {
	name   string
	bus    *bus.Bus
	logger *slog.Logger

	readyOnce sync.Once
	unsubs    []func()
	mu        sync.Mutex
}

// New returns a handle for the named fragment. A nil bus is allowed;
// every method then becomes a no-op.
func New(name string, b *bus.Bus, opts ...Option) *Fragment {
	f := &Fragment{
		name:   name,
		bus:    b,
		logger: slog.Default().With("component", "fragment", "fragment", name),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the fragment name used in lifecycle messages.
func (f *Fragment) Name() string {
	if f == nil {
		return ""
	}
	return f.name
}

// Ready announces the fragment on the bus. The synchronization service
// answers with a full resync, so calling Ready after registering sync
// callbacks gives the fragment current state immediately. Repeated
// calls are ignored.
func (f *Fragment) Ready() {
	if f == nil || f.bus == nil {
		return
	}
	f.readyOnce.Do(func() {
		f.logger.Debug("fragment ready")
		f.bus.Publish(bus.FragmentReady, bus.FragmentReadyPayload{Name: f.name})
	})
}

// ReportError publishes a fragment-local failure for central logging.
// It never mutates shared state.
func (f *Fragment) ReportError(err error) {
	if f == nil || f.bus == nil || err == nil {
		return
	}
	f.bus.Publish(bus.FragmentError, bus.FragmentErrorPayload{Name: f.name, Err: err})
}

// Detach removes every sync callback this handle registered.
func (f *Fragment) Detach() {
	if f == nil {
		return
	}
	f.mu.Lock()
	unsubs := f.unsubs
	f.unsubs = nil
	f.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}

// =============================================================================
// Cart Intents
// =============================================================================

// AddToCart asks for line to be merged into the shared cart.
func (f *Fragment) AddToCart(line state.CartLine) {
	f.publish(bus.CartAdd, bus.CartAddPayload{Line: line})
}

// RemoveFromCart asks for the line with id to be removed.
func (f *Fragment) RemoveFromCart(id string) {
	f.publish(bus.CartRemove, bus.CartRemovePayload{ID: id})
}

// UpdateQuantity overwrites a line's quantity. Zero or negative removes
// the line.
func (f *Fragment) UpdateQuantity(id string, quantity int) {
	f.publish(bus.CartUpdate, bus.CartUpdatePayload{ID: id, Quantity: quantity})
}

// ClearCart empties the shared cart.
func (f *Fragment) ClearCart() {
	f.publish(bus.CartClear, bus.CartClearPayload{})
}

// =============================================================================
// User Intents
// =============================================================================

// Login signs the user in across all fragments.
func (f *Fragment) Login(user state.UserProfile) {
	f.publish(bus.UserLogin, bus.UserLoginPayload{User: user})
}

// Logout signs the user out across all fragments.
func (f *Fragment) Logout() {
	f.publish(bus.UserLogout, bus.UserLogoutPayload{})
}

// UpdateUser replaces the signed-in profile.
func (f *Fragment) UpdateUser(user state.UserProfile) {
	f.publish(bus.UserUpdate, bus.UserUpdatePayload{User: user})
}

// =============================================================================
// Navigation Intents
// =============================================================================

// Navigate changes the shared path and active module.
func (f *Fragment) Navigate(path, module string) {
	f.publish(bus.NavChange, bus.NavChangePayload{Path: path, Module: module})
}

// SetBreadcrumbs replaces the shared breadcrumb trail.
func (f *Fragment) SetBreadcrumbs(crumbs []state.Breadcrumb) {
	f.publish(bus.NavBreadcrumb, bus.NavBreadcrumbPayload{Breadcrumbs: crumbs})
}

// =============================================================================
// Order Intents
// =============================================================================

// PlaceOrder submits a new order. An empty ID is filled in with a fresh
// UUID, and a zero CreatedAt with the current time, so fragments can
// submit bare item lists.
func (f *Fragment) PlaceOrder(order state.Order) string {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	f.publish(bus.OrdersAdd, bus.OrdersAddPayload{Order: order})
	return order.ID
}

// UpdateOrderStatus moves an order along its status lifecycle.
func (f *Fragment) UpdateOrderStatus(id string, status state.OrderStatus) {
	f.publish(bus.OrdersUpdate, bus.OrdersUpdatePayload{ID: id, Status: status})
}

// SyncState publishes on the generic fallback channel for entity kinds
// without a dedicated intent.
func (f *Fragment) SyncState(kind string, value any) {
	f.publish(bus.StateSync, bus.StateSyncPayload{Kind: kind, Value: value})
}

// =============================================================================
// Sync Callbacks
// =============================================================================

// OnCartSync registers fn for cart broadcasts. The returned func
// removes just this callback; Detach removes all of them.
func (f *Fragment) OnCartSync(fn func(cart []state.CartLine)) func() {
	return f.subscribe(bus.CartSync, func(payload any) {
		if p, ok := payload.(bus.CartSyncPayload); ok {
			fn(p.Cart)
		}
	})
}

// OnUserSync registers fn for user broadcasts. user is nil when signed
// out.
func (f *Fragment) OnUserSync(fn func(user *state.UserProfile)) func() {
	return f.subscribe(bus.UserSync, func(payload any) {
		if p, ok := payload.(bus.UserSyncPayload); ok {
			fn(p.User)
		}
	})
}

// OnNavSync registers fn for navigation broadcasts.
func (f *Fragment) OnNavSync(fn func(nav state.Navigation)) func() {
	return f.subscribe(bus.NavSync, func(payload any) {
		if p, ok := payload.(bus.NavSyncPayload); ok {
			fn(p.Navigation)
		}
	})
}

// OnOrdersSync registers fn for order broadcasts.
func (f *Fragment) OnOrdersSync(fn func(orders []state.Order)) func() {
	return f.subscribe(bus.OrdersSync, func(payload any) {
		if p, ok := payload.(bus.OrdersSyncPayload); ok {
			fn(p.Orders)
		}
	})
}

func (f *Fragment) publish(ch bus.Channel, payload any) {
	if f == nil || f.bus == nil {
		return
	}
	f.bus.Publish(ch, payload)
}

func (f *Fragment) subscribe(ch bus.Channel, fn func(any)) func() {
	if f == nil || f.bus == nil {
		return func() {}
	}
	unsub := f.bus.Subscribe(ch, fn)
	f.mu.Lock()
	f.unsubs = append(f.unsubs, unsub)
	f.mu.Unlock()
	return unsub
}
