package state

import "time"

// CartLine is a single entry in the cart. A cart holds at most one line
// per ID; adding the same ID again increments the existing quantity.
type CartLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
	Category string  `json:"category,omitempty"`
}

// Preferences is the user's preference bag. Updates are shallow-merged,
// never replaced wholesale.
type Preferences struct {
	Theme  string `json:"theme,omitempty"`
	Locale string `json:"locale,omitempty"`
}

// UserProfile is the signed-in user. A nil *UserProfile means signed out.
type UserProfile struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Avatar      string       `json:"avatar,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// OrderStatus is the lifecycle position of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition reports whether an order may move from s to next.
// The lifecycle only moves forward (pending, processing, shipped,
// delivered); cancelled is reachable from any non-terminal status.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !next.Valid() || s.Terminal() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	return statusRank(next) == statusRank(s)+1
}

func statusRank(s OrderStatus) int {
	switch s {
	case OrderPending:
		return 0
	case OrderProcessing:
		return 1
	case OrderShipped:
		return 2
	case OrderDelivered:
		return 3
	}
	return -1
}

// Order is a placed order. Items and Total are frozen at creation time;
// only Status and UpdatedAt change afterwards.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Items     []CartLine  `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Breadcrumb is one entry of the navigation trail.
type Breadcrumb struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Navigation is the dashboard's current routing position.
type Navigation struct {
	Path         string       `json:"currentPath"`
	ActiveModule string       `json:"activeModule"`
	Breadcrumbs  []Breadcrumb `json:"breadcrumbs"`
}
