package bus

import (
	"strings"
	"testing"
)

// =============================================================================
// Delivery Order
// =============================================================================

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	b := New()
	var got []string

	b.Subscribe(CartClear, func(any) { got = append(got, "first") })
	b.Subscribe(CartClear, func(any) { got = append(got, "second") })
	b.Subscribe(CartClear, func(any) { got = append(got, "third") })

	b.Publish(CartClear, CartClearPayload{})

	want := "first,second,third"
	if strings.Join(got, ",") != want {
		t.Errorf("delivery order = %q, want %q", strings.Join(got, ","), want)
	}
}

func TestPublishWithNoListenersIsNoop(t *testing.T) {
	b := New()
	b.Publish(CartClear, CartClearPayload{}) // must not panic
}

func TestPublishPassesPayload(t *testing.T) {
	b := New()
	var got any

	b.Subscribe(CartRemove, func(p any) { got = p })
	b.Publish(CartRemove, CartRemovePayload{ID: "sku-1"})

	p, ok := got.(CartRemovePayload)
	if !ok {
		t.Fatalf("payload type = %T, want CartRemovePayload", got)
	}
	if p.ID != "sku-1" {
		t.Errorf("payload ID = %q, want %q", p.ID, "sku-1")
	}
}

// =============================================================================
// Unsubscribe
// =============================================================================

func TestUnsubscribeRemovesExactlyThatHandler(t *testing.T) {
	b := New()
	calls := map[string]int{}

	unsubA := b.Subscribe(UserLogout, func(any) { calls["a"]++ })
	b.Subscribe(UserLogout, func(any) { calls["b"]++ })

	unsubA()
	b.Publish(UserLogout, UserLogoutPayload{})

	if calls["a"] != 0 {
		t.Errorf("unsubscribed handler ran %d times", calls["a"])
	}
	if calls["b"] != 1 {
		t.Errorf("remaining handler ran %d times, want 1", calls["b"])
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b := New()
	count := 0

	unsub := b.Subscribe(UserLogout, func(any) { count++ })
	unsub()
	unsub()

	b.Publish(UserLogout, UserLogoutPayload{})
	if count != 0 {
		t.Errorf("handler ran %d times after unsubscribe", count)
	}
}

func TestHandlerCanUnsubscribeDuringDelivery(t *testing.T) {
	b := New()
	var got []string
	var unsubSecond func()

	b.Subscribe(CartClear, func(any) {
		got = append(got, "first")
		unsubSecond()
	})
	unsubSecond = b.Subscribe(CartClear, func(any) {
		got = append(got, "second")
	})

	// The in-flight publish iterates a stable copy, so the second
	// handler still fires this round but not the next.
	b.Publish(CartClear, CartClearPayload{})
	b.Publish(CartClear, CartClearPayload{})

	if want := "first,second,first"; strings.Join(got, ",") != want {
		t.Errorf("deliveries = %q, want %q", strings.Join(got, ","), want)
	}
}

func TestSubscribeDuringDeliveryDoesNotFireThisRound(t *testing.T) {
	b := New()
	lateCalls := 0

	b.Subscribe(CartClear, func(any) {
		b.Subscribe(CartClear, func(any) { lateCalls++ })
	})

	b.Publish(CartClear, CartClearPayload{})
	if lateCalls != 0 {
		t.Errorf("late subscriber fired %d times in the publish that registered it", lateCalls)
	}

	b.Publish(CartClear, CartClearPayload{})
	if lateCalls != 1 {
		t.Errorf("late subscriber fired %d times on the next publish, want 1", lateCalls)
	}
}

func TestUnsubscribeAllSingleChannel(t *testing.T) {
	b := New()
	cartCalls, userCalls := 0, 0

	b.Subscribe(CartClear, func(any) { cartCalls++ })
	b.Subscribe(UserLogout, func(any) { userCalls++ })

	b.UnsubscribeAll(CartClear)
	b.Publish(CartClear, CartClearPayload{})
	b.Publish(UserLogout, UserLogoutPayload{})

	if cartCalls != 0 {
		t.Errorf("cart handler survived UnsubscribeAll(CartClear)")
	}
	if userCalls != 1 {
		t.Errorf("user handler calls = %d, want 1", userCalls)
	}
}

func TestUnsubscribeAllEveryChannel(t *testing.T) {
	b := New()
	calls := 0

	b.Subscribe(CartClear, func(any) { calls++ })
	b.Subscribe(UserLogout, func(any) { calls++ })

	b.UnsubscribeAll()
	b.Publish(CartClear, CartClearPayload{})
	b.Publish(UserLogout, UserLogoutPayload{})

	if calls != 0 {
		t.Errorf("handlers survived UnsubscribeAll(), calls = %d", calls)
	}
}

// =============================================================================
// SubscribeOnce
// =============================================================================

func TestSubscribeOnceFiresExactlyOnce(t *testing.T) {
	b := New()
	count := 0

	b.SubscribeOnce(FragmentReady, func(any) { count++ })

	b.Publish(FragmentReady, FragmentReadyPayload{Name: "cart"})
	b.Publish(FragmentReady, FragmentReadyPayload{Name: "orders"})

	if count != 1 {
		t.Errorf("once handler ran %d times, want 1", count)
	}
}

func TestSubscribeOnceCancelBeforeDelivery(t *testing.T) {
	b := New()
	count := 0

	unsub := b.SubscribeOnce(FragmentReady, func(any) { count++ })
	unsub()

	b.Publish(FragmentReady, FragmentReadyPayload{Name: "cart"})
	if count != 0 {
		t.Errorf("cancelled once handler ran %d times", count)
	}
}

func TestSubscribeOnceSurvivesReentrantPublish(t *testing.T) {
	b := New()
	count := 0

	b.SubscribeOnce(FragmentReady, func(any) {
		count++
		if count == 1 {
			b.Publish(FragmentReady, FragmentReadyPayload{Name: "again"})
		}
	})

	b.Publish(FragmentReady, FragmentReadyPayload{Name: "cart"})
	if count != 1 {
		t.Errorf("once handler ran %d times across re-entrant publish, want 1", count)
	}
}

// =============================================================================
// Error Isolation
// =============================================================================

func TestPanickingHandlerDoesNotStopDelivery(t *testing.T) {
	b := New()
	var got []string

	b.Subscribe(CartClear, func(any) { panic("boom") })
	b.Subscribe(CartClear, func(any) { got = append(got, "same-channel") })
	b.Subscribe(UserLogout, func(any) { got = append(got, "other-channel") })

	b.Publish(CartClear, CartClearPayload{})
	b.Publish(UserLogout, UserLogoutPayload{})

	if want := "same-channel,other-channel"; strings.Join(got, ",") != want {
		t.Errorf("deliveries = %q, want %q", strings.Join(got, ","), want)
	}
}

func TestPanickingHandlerDoesNotPoisonLaterPublishes(t *testing.T) {
	b := New()
	calls := 0

	b.Subscribe(CartClear, func(any) { panic("boom") })
	b.Subscribe(CartClear, func(any) { calls++ })

	b.Publish(CartClear, CartClearPayload{})
	b.Publish(CartClear, CartClearPayload{})

	if calls != 2 {
		t.Errorf("healthy handler ran %d times, want 2", calls)
	}
}

func TestHandlerFaultReachesErrorSink(t *testing.T) {
	var faultCh Channel
	var faultErr error

	b := New(WithErrorSink(func(ch Channel, err error) {
		faultCh = ch
		faultErr = err
	}))

	b.Subscribe(CartClear, func(any) { panic("boom") })
	b.Publish(CartClear, CartClearPayload{})

	if faultCh != CartClear {
		t.Errorf("fault channel = %q, want %q", faultCh, CartClear)
	}
	if faultErr == nil || !strings.Contains(faultErr.Error(), "boom") {
		t.Errorf("fault error = %v, want it to mention the panic value", faultErr)
	}
}

// =============================================================================
// Nil Bus Degradation
// =============================================================================

func TestNilBusOperationsAreNoops(t *testing.T) {
	var b *Bus

	unsub := b.Subscribe(CartClear, func(any) {})
	unsub()
	unsubOnce := b.SubscribeOnce(CartClear, func(any) {})
	unsubOnce()
	b.Publish(CartClear, CartClearPayload{})
	b.UnsubscribeAll()

	if b.Listeners() != nil {
		t.Errorf("nil bus Listeners() = %v, want nil", b.Listeners())
	}
}

// =============================================================================
// Introspection
// =============================================================================

func TestListenersCountsPerChannel(t *testing.T) {
	b := New()

	b.Subscribe(CartSync, func(any) {})
	b.Subscribe(CartSync, func(any) {})
	unsub := b.Subscribe(UserSync, func(any) {})
	unsub()

	counts := b.Listeners()
	if counts[CartSync] != 2 {
		t.Errorf("CartSync listeners = %d, want 2", counts[CartSync])
	}
	if _, ok := counts[UserSync]; ok {
		t.Errorf("UserSync still reported after unsubscribe: %v", counts)
	}
}

func TestTapObservesEveryPublish(t *testing.T) {
	var seen []Channel
	b := New(WithTap(func(ch Channel, _ any) { seen = append(seen, ch) }))

	b.Publish(CartClear, CartClearPayload{})
	b.Publish(UserLogout, UserLogoutPayload{})

	if len(seen) != 2 || seen[0] != CartClear || seen[1] != UserLogout {
		t.Errorf("tap saw %v, want [cart:clear user:logout]", seen)
	}
}
