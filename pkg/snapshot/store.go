// Package snapshot persists the canonical state across reloads.
//
// Persistence is best-effort: the canonical store writes on a
// fire-and-forget goroutine after every mutation and reads exactly once
// at startup. A failed or slow backend never blocks or fails an
// in-memory mutation.
package snapshot

import (
	"context"
)

// Store is a durable backend for the serialized state snapshot. There
// is a single snapshot per store; Save overwrites it. Implementations
// must be safe for concurrent use.
type Store interface {
	// Save overwrites the persisted snapshot.
	Save(ctx context.Context, data []byte) error

	// Load returns the persisted snapshot, or (nil, nil) when none
	// exists. Backend failures return (nil, err).
	Load(ctx context.Context) ([]byte, error)

	// Delete removes the persisted snapshot. Deleting a missing
	// snapshot is not an error.
	Delete(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// ErrStoreClosed is returned by operations on a closed store.
type ErrStoreClosed struct{}

func (ErrStoreClosed) Error() string {
	return "snapshot store is closed"
}
