package store

import (
	"time"

	"github.com/fragsync-dev/fragsync/pkg/state"
)

// AddOrder appends order to the collection. Items and total are frozen
// as given; callers must use a fresh identifier per order, no
// deduplication happens here. A zero status defaults to pending, zero
// timestamps default to now.
func (s *Store) AddOrder(order state.Order) {
	if order.ID == "" {
		s.logger.Warn("rejecting order without identifier")
		return
	}

	now := time.Now().UTC()
	if order.Status == "" {
		order.Status = state.OrderPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	s.mutate("orders.add", func(st *state.Snapshot) {
		order.Items = state.CloneCart(order.Items)
		st.Orders = append(st.Orders, order)
	})
}

// SetOrderStatus moves the order with the given ID to status and stamps
// UpdatedAt. An absent ID is a no-op. Transitions only move forward
// through the lifecycle, with cancelled reachable from any non-terminal
// status; an illegal transition is logged and ignored.
func (s *Store) SetOrderStatus(id string, status state.OrderStatus) {
	s.mutate("orders.update", func(st *state.Snapshot) {
		for i := range st.Orders {
			if st.Orders[i].ID != id {
				continue
			}
			if !st.Orders[i].Status.CanTransition(status) {
				s.logger.Warn("ignoring illegal order status transition",
					"order", id, "from", string(st.Orders[i].Status), "to", string(status))
				return
			}
			st.Orders[i].Status = status
			st.Orders[i].UpdatedAt = laterThan(st.Orders[i].UpdatedAt)
			return
		}
	})
}

// SetOrders replaces the order collection wholesale. The
// synchronization service uses this to apply a broadcast snapshot.
func (s *Store) SetOrders(orders []state.Order) {
	s.mutate("orders.set", func(st *state.Snapshot) {
		st.Orders = state.CloneOrders(orders)
	})
}

// Order returns the order with the given ID, if present.
func (s *Store) Order(id string) (state.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.st.Orders {
		if o.ID == id {
			o.Items = state.CloneCart(o.Items)
			return o, true
		}
	}
	return state.Order{}, false
}

// laterThan returns now, bumped just past prev if the clock has not
// visibly advanced, so consecutive updates always carry increasing
// timestamps.
func laterThan(prev time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}
