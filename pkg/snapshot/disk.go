package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"sync"
)

// DiskStore persists the snapshot as a single JSON file. Writes go
// through a temp file and rename, so a crash mid-write leaves the
// previous snapshot intact.
type DiskStore struct {
	path string
	mu   sync.Mutex
}

// NewDiskStore creates a disk-backed store at path, creating the parent
// directory if needed.
func NewDiskStore(path string) (*DiskStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return &DiskStore{path: path}, nil
}

// Path returns the snapshot file location.
func (d *DiskStore) Path() string {
	return d.path
}

// Save writes the snapshot atomically.
func (d *DiskStore) Save(ctx context.Context, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, d.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Load reads the snapshot file, returning (nil, nil) when it does not
// exist yet.
func (d *DiskStore) Load(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete removes the snapshot file.
func (d *DiskStore) Delete(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := os.Remove(d.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close is a no-op for the disk backend.
func (d *DiskStore) Close() error {
	return nil
}
