package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fragsync-dev/fragsync/pkg/bus"
	"github.com/fragsync-dev/fragsync/pkg/catalog"
	"github.com/fragsync-dev/fragsync/pkg/fragment"
	"github.com/fragsync-dev/fragsync/pkg/state"
	"github.com/fragsync-dev/fragsync/pkg/statesync"
	"github.com/fragsync-dev/fragsync/pkg/store"
)

func demoCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted multi-fragment session",
		Long: `Run a scripted session that exercises the full synchronization
path in-process: a catalog fragment fills the cart, a header fragment
signs the user in, a checkout fragment places an order, and an orders
fragment attaches late and converges through the ready handshake.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the final snapshot as JSON")

	return cmd
}

func runDemo(asJSON bool) error {
	b := bus.New()
	st := store.New()
	svc := statesync.New(b, st)
	svc.Start()
	defer svc.Stop()

	if !asJSON {
		printBanner()
		info("demo")
		info("")
	}

	// Catalog fragment: two products, one of them twice.
	catalogFrag := fragment.New("catalog", b)
	clock, _ := catalog.ByID("home-5")
	headphones, _ := catalog.ByID("electronics-1")
	catalogFrag.AddToCart(clock.CartLine(1))
	catalogFrag.AddToCart(clock.CartLine(1))
	catalogFrag.AddToCart(headphones.CartLine(1))

	// Header fragment: sign in and navigate to checkout.
	header := fragment.New("header", b)
	header.Login(state.UserProfile{
		ID:    "default-user",
		Name:  "Default User",
		Email: "default@example.com",
	})
	header.Navigate("/checkout", "checkout")

	// Checkout fragment: place the order from the current cart.
	checkout := fragment.New("checkout", b)
	snap := st.Snapshot()
	orderID := checkout.PlaceOrder(state.Order{
		UserID: "default-user",
		Items:  snap.Cart,
		Total:  snap.CartTotal,
	})
	checkout.ClearCart()
	checkout.UpdateOrderStatus(orderID, state.OrderProcessing)

	// Orders fragment attaches late and converges via the handshake.
	orders := fragment.New("orders", b)
	var seen []state.Order
	orders.OnOrdersSync(func(o []state.Order) { seen = o })
	orders.Ready()

	final := st.Snapshot()
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(final)
	}

	success("Cart merged: %d items before checkout", 3)
	success("Signed in as %s", final.User.Name)
	success("Order %s placed (%s), total %.2f", orderID, seen[0].Status, seen[0].Total)
	success("Late fragment converged: sees %d order(s)", len(seen))
	info("")
	info("Final state: cartCount=%d cartTotal=%.2f path=%s",
		final.CartCount, final.CartTotal, final.Navigation.Path)
	fmt.Println()
	return nil
}
