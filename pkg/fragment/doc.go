// Package fragment gives a dashboard fragment a typed handle onto the
// shared bus. Instead of publishing raw payload structs, fragment code
// calls intent methods (AddToCart, Login, Navigate, PlaceOrder) and
// registers typed sync callbacks (OnCartSync, OnUserSync). The handle
// also owns the lifecycle handshake: Ready announces the fragment so
// the synchronization service replays current state to it.
//
// All methods degrade to no-ops on a nil handle or a handle built over
// a nil bus, so fragments stay runnable in isolation.
package fragment
