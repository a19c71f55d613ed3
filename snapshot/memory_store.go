/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package snapshot

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. Reads may run concurrently.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Snapshot),
	}
}

// Get retrieves the snapshot for transientID.
func (m *MemoryStore) Get(_ context.Context, transientID string) (Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.data[transientID]
	return snap, ok, nil
}

// Put stores snap, replacing any previous snapshot.
func (m *MemoryStore) Put(_ context.Context, transientID string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[transientID] = snap
	return nil
}

// Remove forgets the snapshot for transientID. Removing an unknown id is not an error.
func (m *MemoryStore) Remove(_ context.Context, transientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, transientID)
	return nil
}

// Len returns the number of stored snapshots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Clear removes every snapshot.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]Snapshot)
}
