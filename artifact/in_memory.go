package artifact

import (
	"sort"
	"sync"
)

// InMemoryStore is an in-process ArtifactStore. It keeps all artifacts in a
// nested map guarded by an RWMutex. Data is copied on save and retrieval so a
// stored payload can never be mutated through a caller's slice.
//
// Layout: scope (run id) -> key -> raw bytes
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string][]byte
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string][]byte)}
}

// Save stores the artifact bytes for the given scope and key, replacing any
// previous binding. The input slice is copied before storage.
func (a *InMemoryStore) Save(scope, key string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.artifacts[scope]; !exists {
		a.artifacts[scope] = make(map[string][]byte)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	a.artifacts[scope][key] = cp
	return nil
}

// Get returns a copy of the stored artifact bytes or ErrNotFound.
func (a *InMemoryStore) Get(scope, key string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.artifacts[scope][key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// List returns the sorted artifact keys stored for the scope.
func (a *InMemoryStore) List(scope string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m := a.artifacts[scope]
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (a *InMemoryStore) Delete(scope, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.artifacts[scope]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m[key]; !ok {
		return ErrNotFound
	}
	delete(m, key)
	return nil
}
