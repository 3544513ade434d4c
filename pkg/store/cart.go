package store

import "github.com/fragsync-dev/fragsync/pkg/state"

// AddCartLine adds line to the cart. If a line with the same ID already
// exists its quantity is incremented by the incoming quantity; otherwise
// the line is appended. Lines with an empty ID, a non-positive
// quantity, or a negative price are logged and ignored.
func (s *Store) AddCartLine(line state.CartLine) {
	if line.ID == "" || line.Quantity <= 0 || line.Price < 0 {
		s.logger.Warn("rejecting invalid cart line",
			"id", line.ID, "quantity", line.Quantity, "price", line.Price)
		return
	}

	s.mutate("cart.add", func(st *state.Snapshot) {
		merged := false
		for i := range st.Cart {
			if st.Cart[i].ID == line.ID {
				st.Cart[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			st.Cart = append(st.Cart, line)
		}
		recomputeCart(st)
	})
}

// RemoveCartLine removes the line with the given ID. An absent ID is a
// no-op, not an error.
func (s *Store) RemoveCartLine(id string) {
	s.mutate("cart.remove", func(st *state.Snapshot) {
		kept := st.Cart[:0]
		for _, l := range st.Cart {
			if l.ID != id {
				kept = append(kept, l)
			}
		}
		st.Cart = kept
		recomputeCart(st)
	})
}

// SetCartLineQuantity overwrites the quantity of the line with the
// given ID. A quantity of zero or less removes the line. An absent ID
// with a positive quantity is a no-op.
func (s *Store) SetCartLineQuantity(id string, quantity int) {
	if quantity <= 0 {
		s.RemoveCartLine(id)
		return
	}

	s.mutate("cart.update", func(st *state.Snapshot) {
		for i := range st.Cart {
			if st.Cart[i].ID == id {
				st.Cart[i].Quantity = quantity
				break
			}
		}
		recomputeCart(st)
	})
}

// ClearCart empties the cart and zeroes both aggregates.
func (s *Store) ClearCart() {
	s.mutate("cart.clear", func(st *state.Snapshot) {
		st.Cart = []state.CartLine{}
		recomputeCart(st)
	})
}

// SetCart replaces the line collection wholesale. The synchronization
// service uses this to apply a broadcast cart snapshot; fragments
// should publish intents instead.
func (s *Store) SetCart(lines []state.CartLine) {
	s.mutate("cart.set", func(st *state.Snapshot) {
		st.Cart = state.CloneCart(lines)
		recomputeCart(st)
	})
}

// CartLine returns the line with the given ID, if present.
func (s *Store) CartLine(id string) (state.CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.st.Cart {
		if l.ID == id {
			return l, true
		}
	}
	return state.CartLine{}, false
}

// HasCartLine reports whether a line with the given ID is in the cart.
func (s *Store) HasCartLine(id string) bool {
	_, ok := s.CartLine(id)
	return ok
}

// recomputeCart rebuilds both aggregates from the full line collection.
// Aggregates are never adjusted incrementally; that is what keeps them
// from drifting.
func recomputeCart(st *state.Snapshot) {
	st.CartCount = state.CartCountOf(st.Cart)
	st.CartTotal = state.CartTotalOf(st.Cart)
}
