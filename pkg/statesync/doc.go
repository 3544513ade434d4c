// Package statesync bridges the event bus and the canonical store. It
// is the only component that depends on both.
//
// Outbound, it watches the store's four entities and rebroadcasts the
// complete current value of whichever one changed on its ":sync"
// channel. Sync messages are full snapshots, never deltas; consumers
// treat every one as authoritative and idempotent.
//
// Inbound, it listens for intent channels and translates each intent
// into the matching store mutation. Publishing an intent is the only
// legal way a fragment changes canonical state.
//
// Outbound broadcasts carry an origin marker, and the inbound sync
// handlers skip messages bearing it, so the service never re-applies
// its own rebroadcasts. Even without the marker the loop terminates:
// re-applying a snapshot that is already current is value-identical,
// and the store only notifies on value differences. That idempotence is
// a hard requirement of the protocol, not an optimization.
//
// When a fragment announces itself on the ready channel, the service
// republishes all four snapshots unconditionally, so a fragment mounted
// late still converges to current truth without polling.
package statesync
