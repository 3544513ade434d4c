package fragment

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fragsync-dev/fragsync/pkg/bus"
	"github.com/fragsync-dev/fragsync/pkg/state"
	"github.com/fragsync-dev/fragsync/pkg/statesync"
	"github.com/fragsync-dev/fragsync/pkg/store"
)

func wired(t *testing.T) (*bus.Bus, *store.Store) {
	t.Helper()
	b := bus.New()
	st := store.New()
	svc := statesync.New(b, st)
	svc.Start()
	t.Cleanup(svc.Stop)
	return b, st
}

func TestCartIntentsReachStore(t *testing.T) {
	b, st := wired(t)
	f := New("catalog", b)

	f.AddToCart(state.CartLine{ID: "sku-1", Name: "Clock", Price: 10, Quantity: 2})
	f.AddToCart(state.CartLine{ID: "sku-1", Name: "Clock", Price: 10, Quantity: 3})
	if snap := st.Snapshot(); snap.CartCount != 5 || snap.CartTotal != 50 {
		t.Fatalf("aggregates = (%d, %v), want (5, 50)", snap.CartCount, snap.CartTotal)
	}

	f.UpdateQuantity("sku-1", 1)
	if st.Snapshot().CartCount != 1 {
		t.Error("UpdateQuantity not applied")
	}

	f.RemoveFromCart("sku-1")
	if len(st.Snapshot().Cart) != 0 {
		t.Error("RemoveFromCart not applied")
	}

	f.AddToCart(state.CartLine{ID: "sku-2", Price: 1, Quantity: 1})
	f.ClearCart()
	if len(st.Snapshot().Cart) != 0 {
		t.Error("ClearCart not applied")
	}
}

func TestUserIntentsReachStore(t *testing.T) {
	b, st := wired(t)
	f := New("header", b)

	f.Login(state.UserProfile{ID: "u-1", Name: "Dana"})
	if !st.SignedIn() {
		t.Fatal("Login not applied")
	}

	f.UpdateUser(state.UserProfile{ID: "u-1", Name: "Dana Q"})
	if st.User().Name != "Dana Q" {
		t.Error("UpdateUser not applied")
	}

	f.Logout()
	if st.SignedIn() {
		t.Error("Logout not applied")
	}
}

func TestNavigationIntentsReachStore(t *testing.T) {
	b, st := wired(t)
	f := New("shell", b)

	f.Navigate("/orders", "orders")
	if nav := st.Navigation(); nav.Path != "/orders" || nav.ActiveModule != "orders" {
		t.Errorf("navigation = %+v", nav)
	}

	crumbs := []state.Breadcrumb{{Label: "Orders", Path: "/orders"}}
	f.SetBreadcrumbs(crumbs)
	if got := st.Navigation().Breadcrumbs; !reflect.DeepEqual(got, crumbs) {
		t.Errorf("breadcrumbs = %+v", got)
	}
}

func TestPlaceOrderFillsIDAndTimestamps(t *testing.T) {
	b, st := wired(t)
	f := New("checkout", b)

	id := f.PlaceOrder(state.Order{UserID: "u-1", Total: 99})
	if id == "" {
		t.Fatal("PlaceOrder returned empty ID")
	}

	order, ok := st.Order(id)
	if !ok {
		t.Fatalf("order %q not stored", id)
	}
	if order.Status != state.OrderPending {
		t.Errorf("status = %q, want pending", order.Status)
	}
	if order.CreatedAt.IsZero() || order.UpdatedAt.IsZero() {
		t.Error("timestamps not filled in")
	}

	f.UpdateOrderStatus(id, state.OrderProcessing)
	if order, _ := st.Order(id); order.Status != state.OrderProcessing {
		t.Error("UpdateOrderStatus not applied")
	}
}

func TestPlaceOrderKeepsProvidedID(t *testing.T) {
	b, _ := wired(t)
	f := New("checkout", b)

	if id := f.PlaceOrder(state.Order{ID: "o-fixed"}); id != "o-fixed" {
		t.Errorf("id = %q, want o-fixed", id)
	}
}

func TestSyncStateFallback(t *testing.T) {
	b, st := wired(t)
	f := New("legacy", b)

	f.SyncState("cart", []state.CartLine{{ID: "sku-1", Price: 2, Quantity: 3}})
	if st.Snapshot().CartTotal != 6 {
		t.Error("SyncState cart payload not applied")
	}
}

func TestReadyTriggersResyncOnce(t *testing.T) {
	b, _ := wired(t)
	f := New("orders", b)
	f.AddToCart(state.CartLine{ID: "sku-1", Price: 10, Quantity: 2})

	var carts [][]state.CartLine
	f.OnCartSync(func(cart []state.CartLine) { carts = append(carts, cart) })

	f.Ready()
	f.Ready()

	if len(carts) != 1 {
		t.Fatalf("resyncs after two Ready calls = %d, want 1", len(carts))
	}
	if len(carts[0]) != 1 || carts[0][0].ID != "sku-1" {
		t.Errorf("resynced cart = %+v", carts[0])
	}
}

func TestSyncCallbacksReceiveBroadcasts(t *testing.T) {
	b, _ := wired(t)
	producer := New("catalog", b)
	consumer := New("header", b)

	var gotCart []state.CartLine
	var gotUser *state.UserProfile
	var gotNav state.Navigation
	var gotOrders []state.Order
	consumer.OnCartSync(func(c []state.CartLine) { gotCart = c })
	consumer.OnUserSync(func(u *state.UserProfile) { gotUser = u })
	consumer.OnNavSync(func(n state.Navigation) { gotNav = n })
	consumer.OnOrdersSync(func(o []state.Order) { gotOrders = o })

	producer.AddToCart(state.CartLine{ID: "sku-1", Price: 10, Quantity: 1})
	producer.Login(state.UserProfile{ID: "u-1"})
	producer.Navigate("/cart", "cart")
	producer.PlaceOrder(state.Order{ID: "o-1"})

	if len(gotCart) != 1 || gotUser == nil || gotNav.Path != "/cart" || len(gotOrders) != 1 {
		t.Errorf("callbacks missed broadcasts: cart=%v user=%v nav=%v orders=%v",
			gotCart, gotUser, gotNav, gotOrders)
	}
}

func TestDetachRemovesAllCallbacks(t *testing.T) {
	b, _ := wired(t)
	producer := New("catalog", b)
	consumer := New("header", b)

	calls := 0
	consumer.OnCartSync(func([]state.CartLine) { calls++ })
	consumer.OnUserSync(func(*state.UserProfile) { calls++ })
	consumer.Detach()

	producer.AddToCart(state.CartLine{ID: "sku-1", Price: 1, Quantity: 1})
	producer.Login(state.UserProfile{ID: "u-1"})

	if calls != 0 {
		t.Errorf("detached callbacks ran %d times", calls)
	}
}

func TestReportError(t *testing.T) {
	b, _ := wired(t)
	f := New("orders", b)

	var got bus.FragmentErrorPayload
	b.Subscribe(bus.FragmentError, func(p any) { got = p.(bus.FragmentErrorPayload) })

	f.ReportError(errors.New("widget exploded"))
	if got.Name != "orders" || got.Err == nil {
		t.Errorf("error payload = %+v", got)
	}

	f.ReportError(nil) // must not publish
	if got.Err.Error() != "widget exploded" {
		t.Error("nil error was published")
	}
}

func TestNilSafety(t *testing.T) {
	var f *Fragment
	f.AddToCart(state.CartLine{ID: "x"})
	f.Ready()
	f.Detach()
	if f.Name() != "" {
		t.Error("nil Name")
	}

	detached := New("solo", nil)
	detached.AddToCart(state.CartLine{ID: "x"})
	detached.Ready()
	if unsub := detached.OnCartSync(func([]state.CartLine) {}); unsub == nil {
		t.Error("nil-bus subscribe returned nil unsubscribe")
	}
}
