// Package store holds the single canonical copy of cart, user, order,
// and navigation state.
//
// All mutation goes through intention-revealing methods (AddCartLine,
// SetUser, SetOrderStatus, ...). After every mutation the store
// recomputes derived aggregates from the full state, notifies selector
// subscriptions whose selected value changed, and writes the
// persistable subset to the configured snapshot backend on a
// fire-and-forget goroutine.
//
// Subscriptions are value-based: a callback only fires when the value
// its selector returns differs from the previous one. Re-applying a
// snapshot that is already current therefore produces no notification,
// which is what stops the bus/store feedback loop in the
// synchronization service.
//
// Construct one Store per process (or per test) and pass it by
// reference; there is no package-level instance.
package store
