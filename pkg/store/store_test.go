package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fragsync-dev/fragsync/pkg/snapshot"
	"github.com/fragsync-dev/fragsync/pkg/state"
)

func checkAggregates(t *testing.T, s *Store) {
	t.Helper()
	snap := s.Snapshot()
	if want := state.CartCountOf(snap.Cart); snap.CartCount != want {
		t.Errorf("cart count = %d, recomputation = %d", snap.CartCount, want)
	}
	if want := state.CartTotalOf(snap.Cart); snap.CartTotal != want {
		t.Errorf("cart total = %v, recomputation = %v", snap.CartTotal, want)
	}
}

// =============================================================================
// Cart
// =============================================================================

func TestAddCartLineMergesQuantities(t *testing.T) {
	s := New()

	s.AddCartLine(state.CartLine{ID: "sku-1", Name: "Clock", Price: 10, Quantity: 2})
	checkAggregates(t, s)
	s.AddCartLine(state.CartLine{ID: "sku-1", Name: "Clock", Price: 10, Quantity: 3})
	checkAggregates(t, s)

	snap := s.Snapshot()
	if len(snap.Cart) != 1 {
		t.Fatalf("cart has %d lines, want 1", len(snap.Cart))
	}
	if snap.Cart[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", snap.Cart[0].Quantity)
	}
	if snap.CartCount != 5 || snap.CartTotal != 50 {
		t.Errorf("aggregates = (%d, %v), want (5, 50)", snap.CartCount, snap.CartTotal)
	}

	s.SetCartLineQuantity("sku-1", 0)
	checkAggregates(t, s)
	snap = s.Snapshot()
	if len(snap.Cart) != 0 || snap.CartCount != 0 || snap.CartTotal != 0 {
		t.Errorf("after zero quantity: cart=%d count=%d total=%v, want all zero",
			len(snap.Cart), snap.CartCount, snap.CartTotal)
	}
}

func TestSetCartLineQuantityNonPositiveEqualsRemove(t *testing.T) {
	line := state.CartLine{ID: "sku-1", Price: 10, Quantity: 2}

	viaRemove := New()
	viaRemove.AddCartLine(line)
	viaRemove.RemoveCartLine("sku-1")

	for _, qty := range []int{0, -5} {
		s := New()
		s.AddCartLine(line)
		s.SetCartLineQuantity("sku-1", qty)

		got, want := s.Snapshot(), viaRemove.Snapshot()
		if len(got.Cart) != len(want.Cart) || got.CartCount != want.CartCount || got.CartTotal != want.CartTotal {
			t.Errorf("quantity %d: state %+v differs from RemoveCartLine result %+v", qty, got, want)
		}
	}
}

func TestRemoveCartLineAbsentIDIsNoop(t *testing.T) {
	s := New()
	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 1})

	s.RemoveCartLine("missing")
	checkAggregates(t, s)

	if len(s.Snapshot().Cart) != 1 {
		t.Error("removing an absent ID changed the cart")
	}
}

func TestAddCartLineRejectsInvalidLines(t *testing.T) {
	s := New()

	s.AddCartLine(state.CartLine{ID: "", Price: 10, Quantity: 1})
	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 0})
	s.AddCartLine(state.CartLine{ID: "sku-2", Price: -1, Quantity: 1})

	if n := len(s.Snapshot().Cart); n != 0 {
		t.Errorf("invalid lines stored: %d", n)
	}
}

func TestClearCart(t *testing.T) {
	s := New()
	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 2})
	s.AddCartLine(state.CartLine{ID: "sku-2", Price: 5, Quantity: 1})

	s.ClearCart()

	snap := s.Snapshot()
	if len(snap.Cart) != 0 || snap.CartCount != 0 || snap.CartTotal != 0 {
		t.Errorf("after clear: %+v", snap)
	}
}

func TestCartLineLookup(t *testing.T) {
	s := New()
	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 2})

	if line, ok := s.CartLine("sku-1"); !ok || line.Quantity != 2 {
		t.Errorf("CartLine(sku-1) = (%+v, %v)", line, ok)
	}
	if s.HasCartLine("missing") {
		t.Error("HasCartLine(missing) = true")
	}
}

// =============================================================================
// User
// =============================================================================

func TestSetUserAndSignOut(t *testing.T) {
	s := New()

	s.SetUser(&state.UserProfile{ID: "u-1", Name: "Dana", Email: "dana@example.com"})
	if !s.SignedIn() {
		t.Fatal("expected signed in")
	}

	s.SetUser(nil)
	if s.SignedIn() {
		t.Error("expected signed out")
	}
	if s.Snapshot().User != nil {
		t.Error("snapshot still carries a user after sign-out")
	}
}

func TestMergeUserPreferences(t *testing.T) {
	s := New()
	s.SetUser(&state.UserProfile{
		ID:          "u-1",
		Preferences: &state.Preferences{Theme: "light", Locale: "en"},
	})

	s.MergeUserPreferences(state.Preferences{Theme: "dark"})

	prefs := s.User().Preferences
	if prefs.Theme != "dark" {
		t.Errorf("theme = %q, want dark", prefs.Theme)
	}
	if prefs.Locale != "en" {
		t.Errorf("locale = %q, want en (merge must not replace)", prefs.Locale)
	}
}

func TestMergeUserPreferencesSignedOutIsNoop(t *testing.T) {
	s := New()
	s.MergeUserPreferences(state.Preferences{Theme: "dark"})
	if s.Snapshot().User != nil {
		t.Error("merging preferences while signed out created a user")
	}
}

// =============================================================================
// Orders
// =============================================================================

func TestAddOrderDefaults(t *testing.T) {
	s := New()
	s.AddOrder(state.Order{ID: "o-1", UserID: "u-1", Total: 50})

	order, ok := s.Order("o-1")
	if !ok {
		t.Fatal("order not stored")
	}
	if order.Status != state.OrderPending {
		t.Errorf("status = %q, want pending", order.Status)
	}
	if order.CreatedAt.IsZero() || order.UpdatedAt.IsZero() {
		t.Error("timestamps not defaulted")
	}
}

func TestAddOrderFreezesItems(t *testing.T) {
	s := New()
	items := []state.CartLine{{ID: "sku-1", Price: 10, Quantity: 2}}
	s.AddOrder(state.Order{ID: "o-1", Items: items, Total: 20})

	items[0].Quantity = 99

	order, _ := s.Order("o-1")
	if order.Items[0].Quantity != 2 {
		t.Errorf("stored order aliased caller slice: quantity = %d", order.Items[0].Quantity)
	}
}

func TestSetOrderStatusForwardTransitions(t *testing.T) {
	s := New()
	s.AddOrder(state.Order{ID: "o-1", Status: state.OrderPending})

	s.SetOrderStatus("o-1", state.OrderProcessing)
	s.SetOrderStatus("o-1", state.OrderShipped)
	s.SetOrderStatus("o-1", state.OrderDelivered)

	order, _ := s.Order("o-1")
	if order.Status != state.OrderDelivered {
		t.Errorf("status = %q, want delivered", order.Status)
	}
}

func TestSetOrderStatusRejectsBackwardAndTerminal(t *testing.T) {
	s := New()
	s.AddOrder(state.Order{ID: "o-1", Status: state.OrderShipped})

	s.SetOrderStatus("o-1", state.OrderPending) // backward
	if order, _ := s.Order("o-1"); order.Status != state.OrderShipped {
		t.Errorf("backward transition applied: %q", order.Status)
	}

	s.SetOrderStatus("o-1", state.OrderDelivered)
	s.SetOrderStatus("o-1", state.OrderCancelled) // from terminal
	if order, _ := s.Order("o-1"); order.Status != state.OrderDelivered {
		t.Errorf("transition out of terminal status applied: %q", order.Status)
	}
}

func TestSetOrderStatusCancelFromAnyNonTerminal(t *testing.T) {
	for _, from := range []state.OrderStatus{state.OrderPending, state.OrderProcessing, state.OrderShipped} {
		s := New()
		s.AddOrder(state.Order{ID: "o-1", Status: from})
		s.SetOrderStatus("o-1", state.OrderCancelled)
		if order, _ := s.Order("o-1"); order.Status != state.OrderCancelled {
			t.Errorf("cancel from %q not applied", from)
		}
	}
}

func TestSetOrderStatusAbsentIDIsNoop(t *testing.T) {
	s := New()
	s.SetOrderStatus("missing", state.OrderShipped) // must not panic
	if len(s.Snapshot().Orders) != 0 {
		t.Error("phantom order appeared")
	}
}

func TestSetOrderStatusAdvancesUpdatedAt(t *testing.T) {
	s := New()
	s.AddOrder(state.Order{ID: "o-1", Status: state.OrderPending})
	before, _ := s.Order("o-1")

	s.SetOrderStatus("o-1", state.OrderProcessing)
	after, _ := s.Order("o-1")

	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt did not advance: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
}

// =============================================================================
// Navigation
// =============================================================================

func TestSetNavigationMergesPartially(t *testing.T) {
	s := New()
	s.SetPath("/cart")

	nav := s.Navigation()
	if nav.Path != "/cart" {
		t.Errorf("path = %q, want /cart", nav.Path)
	}
	if nav.ActiveModule != "dashboard" {
		t.Errorf("active module = %q, partial update must not clear it", nav.ActiveModule)
	}

	s.SetActiveModule("cart")
	s.SetBreadcrumbs([]state.Breadcrumb{
		{Label: "Dashboard", Path: "/"},
		{Label: "Cart", Path: "/cart"},
	})

	nav = s.Navigation()
	if nav.ActiveModule != "cart" || len(nav.Breadcrumbs) != 2 {
		t.Errorf("navigation = %+v", nav)
	}
}

// =============================================================================
// Subscriptions
// =============================================================================

func TestSubscribeFiresOnValueChangeOnly(t *testing.T) {
	s := New()
	calls := 0

	s.Subscribe(func(snap state.Snapshot) any { return snap.Cart }, func(any) { calls++ })

	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 1})
	if calls != 1 {
		t.Fatalf("calls after mutation = %d, want 1", calls)
	}

	// Value-identical wholesale replacement: no notification.
	s.SetCart(s.Snapshot().Cart)
	if calls != 1 {
		t.Errorf("calls after identical SetCart = %d, want 1", calls)
	}

	// A mutation of a different entity does not wake a cart watcher.
	s.SetPath("/orders")
	if calls != 1 {
		t.Errorf("calls after navigation change = %d, want 1", calls)
	}
}

func TestSubscribeNoInitialCall(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe(func(snap state.Snapshot) any { return snap.CartCount }, func(any) { calls++ })
	if calls != 0 {
		t.Errorf("subscription fired %d times before any mutation", calls)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	s := New()
	calls := 0

	unsub := s.Subscribe(func(snap state.Snapshot) any { return snap.CartCount }, func(any) { calls++ })
	unsub()

	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 1})
	if calls != 0 {
		t.Errorf("unsubscribed watcher fired %d times", calls)
	}
}

func TestSubscribeToTyped(t *testing.T) {
	s := New()
	var got int

	SubscribeTo(s, func(snap state.Snapshot) int { return snap.CartCount }, func(count int) { got = count })

	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 3})
	if got != 3 {
		t.Errorf("typed watcher got %d, want 3", got)
	}
}

func TestSubscribeCallbackMayMutate(t *testing.T) {
	s := New()
	cleared := false

	SubscribeTo(s, func(snap state.Snapshot) int { return snap.CartCount }, func(count int) {
		// Re-entrant mutation from inside a notification.
		if count >= 5 && !cleared {
			cleared = true
			s.ClearCart()
		}
	})

	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 5})

	if got := s.Snapshot().CartCount; got != 0 {
		t.Errorf("cart count = %d, want 0 after re-entrant clear", got)
	}
}

func TestReentrantMutationDoesNotReplayStaleValues(t *testing.T) {
	s := New()
	profile := &state.UserProfile{ID: "u-1", Name: "Ada"}

	// A cart change triggers a user change from inside the notification
	// pass. The user watcher sits after the cart watcher in the list,
	// so the outer pass reaches it only after the nested pass has
	// already delivered the profile. It must end on the signed-in
	// profile; a trailing call with the pre-mutation nil would
	// desynchronize every consumer from the store.
	SubscribeTo(s, func(snap state.Snapshot) int { return snap.CartCount },
		func(count int) {
			if count > 0 && s.User() == nil {
				s.SetUser(profile)
			}
		})

	var userSeen []*state.UserProfile
	SubscribeTo(s, func(snap state.Snapshot) *state.UserProfile { return snap.User },
		func(user *state.UserProfile) { userSeen = append(userSeen, user) })

	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 1})

	if !s.SignedIn() {
		t.Fatal("store not signed in after re-entrant SetUser")
	}
	if len(userSeen) == 0 {
		t.Fatal("user watcher never fired")
	}
	last := userSeen[len(userSeen)-1]
	if last == nil || last.ID != "u-1" {
		t.Errorf("final user notification = %+v, want the signed-in profile", last)
	}
	for _, u := range userSeen {
		if u == nil {
			t.Error("user watcher saw a nil profile the store never settled on")
		}
	}
}

// =============================================================================
// Snapshot / Restore / Reset
// =============================================================================

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := New()
	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 1})

	snap := s.Snapshot()
	snap.Cart[0].Quantity = 99
	snap.Navigation.Breadcrumbs[0].Label = "Mutated"

	fresh := s.Snapshot()
	if fresh.Cart[0].Quantity != 1 {
		t.Error("mutating a snapshot leaked into the store (cart)")
	}
	if fresh.Navigation.Breadcrumbs[0].Label != "Dashboard" {
		t.Error("mutating a snapshot leaked into the store (breadcrumbs)")
	}
}

func TestRestoreRecomputesAggregates(t *testing.T) {
	s := New()
	s.Restore(state.Snapshot{
		Cart:      []state.CartLine{{ID: "sku-1", Price: 10, Quantity: 4}},
		CartCount: 123, // drifted on purpose
		CartTotal: 9999,
	})

	snap := s.Snapshot()
	if snap.CartCount != 4 || snap.CartTotal != 40 {
		t.Errorf("aggregates after restore = (%d, %v), want (4, 40)", snap.CartCount, snap.CartTotal)
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 1})
	s.SetUser(&state.UserProfile{ID: "u-1"})
	s.AddOrder(state.Order{ID: "o-1"})
	s.SetPath("/cart")

	s.Reset()

	snap := s.Snapshot()
	def := state.Default()
	if len(snap.Cart) != 0 || snap.User != nil || len(snap.Orders) != 0 {
		t.Errorf("state after reset: %+v", snap)
	}
	if snap.Navigation.Path != def.Navigation.Path {
		t.Errorf("navigation after reset = %+v", snap.Navigation)
	}
}

// =============================================================================
// Persistence
// =============================================================================

func TestMutationPersistsToBackend(t *testing.T) {
	backend := snapshot.NewMemoryStore()
	s := New(WithSnapshotStore(backend))

	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 2})

	// The write is fire-and-forget; poll the backend.
	deadline := time.Now().Add(2 * time.Second)
	for {
		data, err := backend.Load(context.Background())
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if data != nil {
			persisted, err := snapshot.Decode(data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if persisted.CartCount == 2 && persisted.CartTotal == 20 {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("snapshot never reached the backend")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type failingBackend struct{ snapshot.Store }

func (failingBackend) Save(ctx context.Context, data []byte) error {
	return errors.New("backend down")
}

func TestPersistenceFailureDoesNotAffectMutation(t *testing.T) {
	errs := make(chan error, 1)
	s := New(
		WithSnapshotStore(failingBackend{snapshot.NewMemoryStore()}),
		WithPersistErrorHandler(func(err error) {
			select {
			case errs <- err:
			default:
			}
		}),
	)

	s.AddCartLine(state.CartLine{ID: "sku-1", Price: 10, Quantity: 1})

	// In-memory state stays authoritative.
	if s.Snapshot().CartCount != 1 {
		t.Error("mutation lost because persistence failed")
	}

	select {
	case err := <-errs:
		if err == nil {
			t.Error("expected a persistence error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("persistence error handler never ran")
	}
}

func TestRehydrateSeedsStateFromBackend(t *testing.T) {
	ctx := context.Background()
	backend := snapshot.NewMemoryStore()

	prior := state.Default()
	prior.Cart = []state.CartLine{{ID: "sku-1", Price: 25, Quantity: 2}}
	prior.CartCount = 2
	prior.CartTotal = 50
	data, err := snapshot.Encode(prior)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := backend.Save(ctx, data); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s := New(WithSnapshotStore(backend))
	s.Rehydrate(ctx)

	snap := s.Snapshot()
	if snap.CartCount != 2 || snap.CartTotal != 50 {
		t.Errorf("rehydrated aggregates = (%d, %v), want (2, 50)", snap.CartCount, snap.CartTotal)
	}
}

func TestRehydrateToleratesCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	backend := snapshot.NewMemoryStore()
	if err := backend.Save(ctx, []byte("{corrupt")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s := New(WithSnapshotStore(backend))
	s.Rehydrate(ctx) // must not panic or error out

	def := state.Default()
	if got := s.Snapshot(); got.Navigation.Path != def.Navigation.Path {
		t.Errorf("state after corrupt rehydrate = %+v, want defaults", got)
	}
}
