package state

// Snapshot is the complete canonical state by value. The JSON field
// names match the persisted on-disk form, so a Snapshot doubles as the
// durable serialization payload.
type Snapshot struct {
	Cart       []CartLine   `json:"cart"`
	CartCount  int          `json:"cartCount"`
	CartTotal  float64      `json:"cartTotal"`
	User       *UserProfile `json:"user"`
	Orders     []Order      `json:"orders"`
	Navigation Navigation   `json:"navigation"`
}

// Default returns the empty initial state: no cart lines, signed out,
// no orders, and navigation pointed at the dashboard root.
func Default() Snapshot {
	return Snapshot{
		Cart:   []CartLine{},
		Orders: []Order{},
		Navigation: Navigation{
			Path:         "/",
			ActiveModule: "dashboard",
			Breadcrumbs:  []Breadcrumb{{Label: "Dashboard", Path: "/"}},
		},
	}
}

// Clone returns a deep copy of s. Holding a clone is safe; it never
// aliases future mutations of the original.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Cart = CloneCart(s.Cart)
	out.User = s.User.Clone()
	out.Orders = CloneOrders(s.Orders)
	out.Navigation = s.Navigation.Clone()
	return out
}

// CloneCart deep-copies a cart line slice. A nil input yields an empty,
// non-nil slice so value comparisons stay stable across round-trips.
func CloneCart(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}

// CloneOrders deep-copies an order slice, including each order's items.
func CloneOrders(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = o
		out[i].Items = CloneCart(o.Items)
	}
	return out
}

// Clone returns a deep copy of the profile, or nil for a signed-out user.
func (u *UserProfile) Clone() *UserProfile {
	if u == nil {
		return nil
	}
	out := *u
	if u.Preferences != nil {
		prefs := *u.Preferences
		out.Preferences = &prefs
	}
	return &out
}

// Clone returns a deep copy of the navigation state.
func (n Navigation) Clone() Navigation {
	out := n
	out.Breadcrumbs = make([]Breadcrumb, len(n.Breadcrumbs))
	copy(out.Breadcrumbs, n.Breadcrumbs)
	return out
}

// CartCountOf recomputes the item count from a line slice.
func CartCountOf(lines []CartLine) int {
	sum := 0
	for _, l := range lines {
		sum += l.Quantity
	}
	return sum
}

// CartTotalOf recomputes the cart value from a line slice.
func CartTotalOf(lines []CartLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}
