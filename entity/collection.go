/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entity

import (
	"reflect"
	"sync"
)

// Tracked is the engine-facing view of a to-many association.
type Tracked interface {
	IsDirty() bool
	SetDirty(dirty bool)
	Members() []Entity
	// ConsumeDirty returns the members and clears the dirty flag under one lock.
	// It reports false, and leaves the flag alone, when the collection is clean.
	ConsumeDirty() ([]Entity, bool)
	TargetType() reflect.Type
}

// Collection is an ordered set of members of one to-many association plus a dirty flag.
// Every membership mutation marks the collection dirty. Use a pointer field in
// entity structs so the flag is shared.
type Collection[T Entity] struct {
	mu    sync.Mutex
	items []T
	dirty bool
}

// NewCollection returns a clean collection holding items, as loaded from storage.
func NewCollection[T Entity](items ...T) *Collection[T] {
	c := &Collection[T]{}
	for _, item := range items {
		if !IsNilEntity(item) && !c.contains(item) {
			c.items = append(c.items, item)
		}
	}
	return c
}

// Add appends items that are not already members.
func (c *Collection[T]) Add(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range items {
		if IsNilEntity(item) || c.contains(item) {
			continue
		}
		c.items = append(c.items, item)
		c.dirty = true
	}
}

// Remove drops items, keeping the order of the remaining members.
func (c *Collection[T]) Remove(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range items {
		for i, member := range c.items {
			if sameEntity(member, item) {
				c.items = append(c.items[:i], c.items[i+1:]...)
				c.dirty = true
				break
			}
		}
	}
}

// Set replaces the membership.
func (c *Collection[T]) Set(items ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = c.items[:0]
	for _, item := range items {
		if !IsNilEntity(item) && !c.contains(item) {
			c.items = append(c.items, item)
		}
	}
	c.dirty = true
}

// Clear removes every member.
func (c *Collection[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.dirty = true
}

// Contains reports membership by transient identifier.
func (c *Collection[T]) Contains(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contains(item)
}

// Items returns a copy of the members in order.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of members.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// IsDirty implements Tracked.
func (c *Collection[T]) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// SetDirty implements Tracked.
func (c *Collection[T]) SetDirty(dirty bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = dirty
}

// Members implements Tracked.
func (c *Collection[T]) Members() []Entity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.members()
}

// ConsumeDirty implements Tracked.
func (c *Collection[T]) ConsumeDirty() ([]Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil, false
	}
	c.dirty = false
	return c.members(), true
}

// TargetType implements Tracked.
func (c *Collection[T]) TargetType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (c *Collection[T]) members() []Entity {
	out := make([]Entity, len(c.items))
	for i, item := range c.items {
		out[i] = item
	}
	return out
}

func (c *Collection[T]) contains(item T) bool {
	for _, member := range c.items {
		if sameEntity(member, item) {
			return true
		}
	}
	return false
}

func sameEntity(a, b Entity) bool {
	if IsNilEntity(a) || IsNilEntity(b) {
		return false
	}
	if a.TransientID() == "" || b.TransientID() == "" {
		return a == b
	}
	return a.TransientID() == b.TransientID()
}
