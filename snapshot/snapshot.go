/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package snapshot

import (
	"context"
	"sort"
)

// Snapshot is the last-known persisted state of one entity, property name to value.
// It is immutable: the map is copied on the way in and on the way out.
type Snapshot struct {
	values map[string]any
}

// New copies values into a Snapshot.
func New(values map[string]any) Snapshot {
	cp := make(map[string]any, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Snapshot{values: cp}
}

// Get returns the recorded value of a property.
func (s Snapshot) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of recorded properties.
func (s Snapshot) Len() int {
	return len(s.values)
}

// Keys returns the recorded property names in lexical order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns a copy of the recorded values.
func (s Snapshot) Values() map[string]any {
	cp := make(map[string]any, len(s.values))
	for k, v := range s.values {
		cp[k] = v
	}
	return cp
}

// Store holds one Snapshot per tracked entity, keyed by transient identifier.
// A Put replaces the previous snapshot wholesale.
type Store interface {
	Get(ctx context.Context, transientID string) (Snapshot, bool, error)
	Put(ctx context.Context, transientID string, snap Snapshot) error
	Remove(ctx context.Context, transientID string) error
}
