// Package registry keeps the durable roster of chats that receive broadcast
// notifications. The set only grows through add-if-absent registration and
// only shrinks when a delivery attempt fails. It is persisted as a JSON array
// of chat ids; a missing or unreadable file is never fatal — the roster just
// starts empty.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// StorageError wraps a roster persistence failure. Callers log it and carry
// on: the primary operation already succeeded.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string { return fmt.Sprintf("persist roster %s: %v", e.Path, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

type Registry struct {
	mu   sync.Mutex
	path string
	set  map[int64]struct{}
}

// Load reads the roster at path. Any read or decode failure degrades to an
// empty roster; the file is recreated on the next successful registration.
func Load(path string) *Registry {
	r := &Registry{path: path, set: make(map[int64]struct{})}
	data, err := os.ReadFile(path)
	if err != nil {
		return r
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return r
	}
	for _, id := range ids {
		r.set[id] = struct{}{}
	}
	return r
}

// Register adds the chat if absent and persists the set on actual insertion.
// Registering a known chat is a no-op and reports added=false.
func (r *Registry) Register(id int64) (added bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.set[id]; ok {
		return false, nil
	}
	r.set[id] = struct{}{}
	return true, r.persist()
}

// Remove evicts the chat, persisting on actual removal. Used when a delivery
// attempt reports the chat unreachable.
func (r *Registry) Remove(id int64) (removed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.set[id]; !ok {
		return false, nil
	}
	delete(r.set, id)
	return true, r.persist()
}

// Contains reports membership.
func (r *Registry) Contains(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.set[id]
	return ok
}

// Snapshot returns the chat ids, sorted, as a copy safe to range over while
// the registry keeps changing.
func (r *Registry) Snapshot() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids()
}

func (r *Registry) ids() []int64 {
	ids := make([]int64, 0, len(r.set))
	for id := range r.set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// persist writes the full set through a temp file and a rename, under the
// same lock that mutated the set, so memory and disk move together.
func (r *Registry) persist() error {
	data, err := json.Marshal(r.ids())
	if err != nil {
		return &StorageError{Path: r.path, Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".roster-*")
	if err != nil {
		return &StorageError{Path: r.path, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &StorageError{Path: r.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &StorageError{Path: r.path, Err: err}
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return &StorageError{Path: r.path, Err: err}
	}
	return nil
}
