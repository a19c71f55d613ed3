/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entity

import (
	"reflect"

	"github.com/google/uuid"
)

// Entity is a live instance tracked by the unit of work.
type Entity interface {
	// TransientID is a process-unique identity assigned at creation and never reused.
	TransientID() string
}

// Named lets an entity report its metadata type name instead of the Go type name.
type Named interface {
	EntityName() string
}

// Base supplies the transient identifier. Embed it in entity structs and build it with NewBase.
type Base struct {
	tid string
}

// NewBase returns a Base carrying a fresh transient identifier.
func NewBase() Base {
	return Base{tid: uuid.NewString()}
}

// TransientID implements Entity.
func (b Base) TransientID() string {
	return b.tid
}

// TypeName returns the metadata type name for e.
func TypeName(e any) string {
	if n, ok := e.(Named); ok {
		return n.EntityName()
	}
	return TypeNameOf(reflect.TypeOf(e))
}

// TypeNameOf returns the metadata type name for a Go type, dereferencing pointers.
func TypeNameOf(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(namedType) {
		if name := reflect.New(t).Interface().(Named).EntityName(); name != "" {
			return name
		}
	}
	return t.Name()
}

var namedType = reflect.TypeOf((*Named)(nil)).Elem()

// IsZero reports whether v is nil or the zero value of its type. Pointers are
// followed, so a pointer to an empty string counts as zero.
func IsZero(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return true
		}
		rv = rv.Elem()
	}
	return rv.IsZero()
}
