package bus

import "github.com/fragsync-dev/fragsync/pkg/state"

// Channel names a message stream on the bus. The set below is closed;
// fragments must not invent channels outside it (use StateSync for
// entity kinds the bus does not know yet).
type Channel string

const (
	// Cart intents and the cart broadcast channel.
	CartAdd    Channel = "cart:add"
	CartRemove Channel = "cart:remove"
	CartUpdate Channel = "cart:update"
	CartClear  Channel = "cart:clear"
	CartSync   Channel = "cart:sync"

	// User intents and the user broadcast channel.
	UserLogin  Channel = "user:login"
	UserLogout Channel = "user:logout"
	UserUpdate Channel = "user:update"
	UserSync   Channel = "user:sync"

	// Navigation intents and the navigation broadcast channel.
	NavChange     Channel = "navigation:change"
	NavBreadcrumb Channel = "navigation:breadcrumb"
	NavSync       Channel = "navigation:sync"

	// Order intents and the orders broadcast channel.
	OrdersAdd    Channel = "orders:add"
	OrdersUpdate Channel = "orders:update"
	OrdersSync   Channel = "orders:sync"

	// StateSync is the generic fallback channel for entity kinds that
	// have no dedicated channel yet.
	StateSync Channel = "state:sync"

	// Fragment lifecycle channels used by the late-joiner handshake.
	FragmentReady Channel = "fragment:ready"
	FragmentError Channel = "fragment:error"
)

// Origin marks where a sync broadcast came from. Inbound handlers use it
// to ignore their own rebroadcasts instead of relying on value-equality
// alone to stop the feedback loop.
type Origin string

const (
	// OriginFragment is the default origin for fragment-issued messages.
	OriginFragment Origin = "fragment"

	// OriginSync marks broadcasts issued by the synchronization service.
	OriginSync Origin = "sync"
)

// =============================================================================
// Payloads
// =============================================================================
//
// One struct per channel. Publish accepts any value, but the dispatcher
// in package statesync type-switches over exactly these shapes and
// treats anything else on a known channel as a no-op.

// CartAddPayload asks for line to be added (quantities merge by ID).
type CartAddPayload struct {
	Line state.CartLine
}

// CartRemovePayload asks for the line with ID to be removed.
type CartRemovePayload struct {
	ID string
}

// CartUpdatePayload asks for the line's quantity to be overwritten.
// Quantity <= 0 removes the line.
type CartUpdatePayload struct {
	ID       string
	Quantity int
}

// CartClearPayload asks for the cart to be emptied.
type CartClearPayload struct{}

// CartSyncPayload announces the full current cart.
type CartSyncPayload struct {
	Cart   []state.CartLine
	Origin Origin
}

// UserLoginPayload asks for the user to be signed in.
type UserLoginPayload struct {
	User state.UserProfile
}

// UserLogoutPayload asks for the user to be signed out.
type UserLogoutPayload struct{}

// UserUpdatePayload asks for the profile to be replaced wholesale.
type UserUpdatePayload struct {
	User state.UserProfile
}

// UserSyncPayload announces the current profile (nil when signed out).
type UserSyncPayload struct {
	User   *state.UserProfile
	Origin Origin
}

// NavChangePayload asks for path and active module to change.
type NavChangePayload struct {
	Path   string
	Module string
}

// NavBreadcrumbPayload asks for the breadcrumb trail to be replaced.
type NavBreadcrumbPayload struct {
	Breadcrumbs []state.Breadcrumb
}

// NavSyncPayload announces the full navigation state.
type NavSyncPayload struct {
	Navigation state.Navigation
	Origin     Origin
}

// OrdersAddPayload asks for a new order to be appended.
type OrdersAddPayload struct {
	Order state.Order
}

// OrdersUpdatePayload asks for an order's status to change.
type OrdersUpdatePayload struct {
	ID     string
	Status state.OrderStatus
}

// OrdersSyncPayload announces the full order collection.
type OrdersSyncPayload struct {
	Orders []state.Order
	Origin Origin
}

// StateSyncPayload is the generic {kind, value} fallback. Recognized
// kinds are "cart", "user", "navigation", and "orders"; anything else
// is logged and ignored.
type StateSyncPayload struct {
	Kind  string
	Value any
}

// FragmentReadyPayload announces that a fragment finished initializing.
// Publishing it triggers a full resync of all four entities.
type FragmentReadyPayload struct {
	Name string
}

// FragmentErrorPayload reports a fragment-local failure. It is logged
// centrally and never mutates canonical state.
type FragmentErrorPayload struct {
	Name string
	Err  error
}
