/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package unitofwork

import (
	"context"

	"github.com/suparena/unitofwork/entity"
)

// Type says how a change set must be written.
type Type int

const (
	// Insert means the payload is a full serialization of an entity with no snapshot.
	Insert Type = iota
	// Update means the payload holds only the properties that differ from the snapshot.
	Update
)

func (t Type) String() string {
	if t == Update {
		return "update"
	}
	return "insert"
}

// ChangeSet describes one entity's pending write. It borrows the entity and is
// meant to be consumed by the write engine right away.
//
// Payload values are plain property values, primary keys of referenced entities,
// *identifier.Placeholder for referenced entities that have no key yet, and
// []any lists of keys or placeholders for many-to-many properties.
type ChangeSet struct {
	Entity     entity.Entity
	Name       string
	Collection string
	Payload    map[string]any

	typ Type
	// collections whose dirty flag was consumed to build Payload
	consumed []entity.Tracked
}

// Type reports whether the change set is an insert or an update.
func (cs *ChangeSet) Type() Type {
	return cs.typ
}

// Has reports whether the payload contains name.
func (cs *ChangeSet) Has(name string) bool {
	_, ok := cs.Payload[name]
	return ok
}

// restoreDirty marks consumed collections dirty again so a later flush rewrites them.
func (cs *ChangeSet) restoreDirty() {
	for _, c := range cs.consumed {
		c.SetDirty(true)
	}
	cs.consumed = nil
}

// Writer is the write engine a UnitOfWork commits to. Insert returns the primary
// key the storage assigned, or nil when the payload already carried it.
type Writer interface {
	Insert(ctx context.Context, cs *ChangeSet) (any, error)
	Update(ctx context.Context, cs *ChangeSet) error
}
