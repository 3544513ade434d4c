package snapshot

import (
	"context"
	"sync"
)

// MemoryStore keeps the snapshot in memory. It is the default backend
// and the one tests use; state does not survive a process restart.
type MemoryStore struct {
	mu     sync.RWMutex
	data   []byte
	closed bool
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save overwrites the held snapshot.
func (m *MemoryStore) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}

	// Copy to prevent aliasing by the caller.
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data = cp
	return nil
}

// Load returns a copy of the held snapshot, or (nil, nil) when empty.
func (m *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed{}
	}
	if m.data == nil {
		return nil, nil
	}

	cp := make([]byte, len(m.data))
	copy(cp, m.data)
	return cp, nil
}

// Delete drops the held snapshot.
func (m *MemoryStore) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed{}
	}
	m.data = nil
	return nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}
