package store

import (
	"sync"
)

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore keys snapshots by path and hands out deep copies, so callers
// can never mutate what is stored. It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
	saves     int
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]Snapshot),
	}
}

// Save stores a copy of snap under path, replacing any previous value.
func (m *MemoryStore) Save(path string, snap Snapshot) error {
	if snap.Version == 0 {
		snap.Version = CurrentVersion
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[path] = clone(snap)
	m.saves++
	return nil
}

// Load returns a copy of the snapshot stored under path.
func (m *MemoryStore) Load(path string) (Snapshot, error) {
	m.mu.RLock()
	snap, ok := m.snapshots[path]
	m.mu.RUnlock()

	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return migrate(clone(snap))
}

// Saves returns how many times Save has been called.
func (m *MemoryStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
