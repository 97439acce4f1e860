// Package blob holds exported artifacts in memory under opaque references,
// so callers can fetch or release them independently of the recorder.
package blob

import (
	"sync"

	"github.com/google/uuid"
)

// Ref is an opaque handle to a stored artifact.
type Ref string

// Registry is a uuid-keyed in-memory blob store.
type Registry struct {
	mu    sync.Mutex
	blobs map[Ref][]byte
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{blobs: make(map[Ref][]byte)}
}

// Put stores data and returns a fresh reference to it.
func (r *Registry) Put(data []byte) Ref {
	ref := Ref(uuid.NewString())
	r.mu.Lock()
	r.blobs[ref] = data
	r.mu.Unlock()
	return ref
}

// Get returns the data for ref, if it is still held.
func (r *Registry) Get(ref Ref) ([]byte, bool) {
	r.mu.Lock()
	data, ok := r.blobs[ref]
	r.mu.Unlock()
	return data, ok
}

// Release drops a single reference. Unknown refs are ignored.
func (r *Registry) Release(ref Ref) {
	r.mu.Lock()
	delete(r.blobs, ref)
	r.mu.Unlock()
}

// Len reports how many artifacts are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.blobs)
}

// Close releases everything.
func (r *Registry) Close() {
	r.mu.Lock()
	r.blobs = make(map[Ref][]byte)
	r.mu.Unlock()
}
