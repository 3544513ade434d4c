// Package bus is the in-process publish/subscribe hub that fragments use
// to talk to each other. It routes named messages to registered handlers
// synchronously, in subscription order, and knows nothing about what the
// messages mean.
//
// The channel set is closed: every channel and its payload type are
// declared in this package, so a dispatcher can match payloads
// exhaustively instead of poking at untyped bags.
//
// A handler that panics is isolated: the panic is recovered, reported to
// the error sink, and delivery continues with the remaining handlers.
// Publish never fails because of a misbehaving subscriber.
//
// All methods are safe on a nil *Bus; they log a warning and no-op, so a
// fragment loaded standalone (with no hub wired in) stays runnable.
package bus
