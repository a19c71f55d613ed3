/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identifier

import (
	"sync"

	"github.com/suparena/unitofwork/errors"
)

// Map holds one placeholder per not-yet-persisted entity, keyed by transient
// identifier. Lookups may run concurrently; creation is serialized so two
// computations never mint different tokens for the same entity.
type Map struct {
	mu           sync.RWMutex
	placeholders map[string]*Placeholder
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{placeholders: make(map[string]*Placeholder)}
}

// GetOrCreate returns the placeholder for transientID, creating it on first use.
func (m *Map) GetOrCreate(transientID string) *Placeholder {
	m.mu.RLock()
	p, ok := m.placeholders[transientID]
	m.mu.RUnlock()
	if ok {
		return p
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// another goroutine may have created it between the locks
	if p, ok := m.placeholders[transientID]; ok {
		return p
	}
	p = &Placeholder{tid: transientID}
	m.placeholders[transientID] = p
	return p
}

// Lookup returns the placeholder for transientID without creating one.
func (m *Map) Lookup(transientID string) (*Placeholder, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.placeholders[transientID]
	return p, ok
}

// Resolve assigns the concrete key the storage engine produced for transientID.
// It is called by the write engine after the insert, never during computation.
func (m *Map) Resolve(transientID string, key any) error {
	if key == nil {
		return errors.NewIdentifierResolutionError(transientID, "key", "resolved key must not be nil")
	}
	p, ok := m.Lookup(transientID)
	if !ok {
		return errors.NewNotFoundError("placeholder", transientID)
	}
	p.resolve(key)
	return nil
}

// Len returns the number of placeholders.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.placeholders)
}

// Reset drops every placeholder. Call it between flush cycles; tokens already
// handed out keep their resolved values.
func (m *Map) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placeholders = make(map[string]*Placeholder)
}
