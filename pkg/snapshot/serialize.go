package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fragsync-dev/fragsync/pkg/state"
)

// Envelope is the JSON form written to a backend: the persistable
// state subset plus format metadata. Transient flags never appear here.
type Envelope struct {
	// Version is the serialization format version. Increment on
	// breaking changes to the layout.
	Version int `json:"version"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"savedAt"`

	// State is the persisted subset: cart, aggregates, user, orders,
	// and navigation.
	State state.Snapshot `json:"state"`
}

// CurrentVersion is the current serialization format version.
const CurrentVersion = 1

// Encode serializes a state snapshot into the durable form.
func Encode(s state.Snapshot) ([]byte, error) {
	return json.Marshal(Envelope{
		Version: CurrentVersion,
		SavedAt: time.Now().UTC(),
		State:   s,
	})
}

// Decode parses a durable snapshot. It rejects versions newer than this
// build understands; older versions decode with zero values for fields
// added since.
func Decode(data []byte) (state.Snapshot, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return state.Snapshot{}, err
	}
	if env.Version > CurrentVersion {
		return state.Snapshot{}, fmt.Errorf("snapshot version %d is newer than supported version %d", env.Version, CurrentVersion)
	}
	return env.State, nil
}
