/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entity

import "reflect"

// RefState distinguishes "never assigned" from "assigned to nothing".
type RefState uint8

const (
	// Unset means the relationship was never assigned and is left out of payloads.
	Unset RefState = iota
	// None means the relationship was explicitly cleared.
	None
	// Assigned means the relationship points at an entity.
	Assigned
)

func (s RefState) String() string {
	switch s {
	case None:
		return "none"
	case Assigned:
		return "assigned"
	default:
		return "unset"
	}
}

// Reference is the engine-facing view of a many-to-one property.
type Reference interface {
	State() RefState
	Target() (Entity, bool)
	TargetType() reflect.Type
}

// Ref is a many-to-one relationship to an entity of type T. The zero value is Unset.
type Ref[T Entity] struct {
	state  RefState
	target T
}

// RefTo returns a reference assigned to target. A nil target yields a None reference.
func RefTo[T Entity](target T) Ref[T] {
	if IsNilEntity(target) {
		return Ref[T]{state: None}
	}
	return Ref[T]{state: Assigned, target: target}
}

// NoneOf returns a reference explicitly set to nothing.
func NoneOf[T Entity]() Ref[T] {
	return Ref[T]{state: None}
}

// Get returns the target when the reference is assigned.
func (r Ref[T]) Get() (T, bool) {
	return r.target, r.state == Assigned
}

// State implements Reference.
func (r Ref[T]) State() RefState {
	return r.state
}

// Target implements Reference.
func (r Ref[T]) Target() (Entity, bool) {
	if r.state != Assigned {
		return nil, false
	}
	return r.target, true
}

// TargetType implements Reference.
func (r Ref[T]) TargetType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// IsSet reports whether the reference has been assigned, including to nothing.
func (r Ref[T]) IsSet() bool {
	return r.state != Unset
}

// IsNilEntity reports whether e is nil, including typed nil pointers.
func IsNilEntity(e Entity) bool {
	if e == nil {
		return true
	}
	rv := reflect.ValueOf(e)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Deref interprets a many-to-one property value, which may be a Reference, a bare
// Entity or nil. It reports false for any other shape.
func Deref(v any) (RefState, Entity, bool) {
	switch r := v.(type) {
	case nil:
		return None, nil, true
	case Reference:
		target, _ := r.Target()
		return r.State(), target, true
	case Entity:
		if IsNilEntity(r) {
			return None, nil, true
		}
		return Assigned, r, true
	}
	return Unset, nil, false
}
