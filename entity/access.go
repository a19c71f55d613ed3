/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entity

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/suparena/unitofwork/errors"
)

// TagName is the struct tag read for property names and mapping options.
const TagName = "orm"

// Accessor is implemented by entities that map property names to values themselves.
// Entities that don't implement it are accessed through reflection over exported fields.
type Accessor interface {
	GetProperty(name string) (any, bool)
	SetProperty(name string, value any) error
}

// ParseTag splits an orm tag into the property name and its options.
func ParseTag(tag string) (string, []string) {
	parts := strings.Split(tag, ",")
	name := strings.TrimSpace(parts[0])
	opts := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if p = strings.TrimSpace(p); p != "" {
			opts = append(opts, p)
		}
	}
	return name, opts
}

// PropertyName returns the property name a struct field maps to, or false when the
// field is not a property (unexported, embedded, or tagged "-").
func PropertyName(f reflect.StructField) (string, bool) {
	if !f.IsExported() || f.Anonymous {
		return "", false
	}
	tag, ok := f.Tag.Lookup(TagName)
	if !ok {
		return f.Name, true
	}
	name, _ := ParseTag(tag)
	if name == "-" {
		return "", false
	}
	if name == "" {
		name = f.Name
	}
	return name, true
}

type fieldIndex map[string][]int

var fieldCache sync.Map // reflect.Type -> fieldIndex

func indexFor(t reflect.Type) fieldIndex {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(fieldIndex)
	}
	idx := make(fieldIndex)
	for _, f := range reflect.VisibleFields(t) {
		name, ok := PropertyName(f)
		if !ok {
			continue
		}
		if _, dup := idx[name]; !dup {
			idx[name] = f.Index
		}
	}
	actual, _ := fieldCache.LoadOrStore(t, idx)
	return actual.(fieldIndex)
}

func structValue(e any) (reflect.Value, bool) {
	rv := reflect.ValueOf(e)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.Kind() == reflect.Struct
}

// Get returns the value of the named property.
func Get(e any, name string) (any, bool) {
	if a, ok := e.(Accessor); ok {
		return a.GetProperty(name)
	}
	rv, ok := structValue(e)
	if !ok {
		return nil, false
	}
	path, ok := indexFor(rv.Type())[name]
	if !ok {
		return nil, false
	}
	f, err := rv.FieldByIndexErr(path)
	if err != nil {
		return nil, false
	}
	return f.Interface(), true
}

// Set assigns the named property. Reflection-backed entities must be passed by pointer.
// Values are converted when the field type is convertible, and pointer fields
// receive a freshly allocated copy.
func Set(e any, name string, value any) error {
	if a, ok := e.(Accessor); ok {
		return a.SetProperty(name, value)
	}
	rv, ok := structValue(e)
	if !ok || !rv.CanAddr() {
		return fmt.Errorf("cannot set %q on %T: entity must be a pointer to a struct", name, e)
	}
	path, ok := indexFor(rv.Type())[name]
	if !ok {
		return errors.NewNotFoundError("property", name)
	}
	f, err := rv.FieldByIndexErr(path)
	if err != nil {
		return fmt.Errorf("cannot set %q on %T: %w", name, e, err)
	}
	return assign(f, value)
}

func assign(f reflect.Value, value any) error {
	if value == nil {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(f.Type()):
		f.Set(v)
	case v.Type().ConvertibleTo(f.Type()) && convertible(v.Kind(), f.Kind()):
		f.Set(v.Convert(f.Type()))
	case f.Kind() == reflect.Pointer:
		ptr := reflect.New(f.Type().Elem())
		if err := assign(ptr.Elem(), value); err != nil {
			return err
		}
		f.Set(ptr)
	default:
		return fmt.Errorf("cannot assign %T to field of type %s", value, f.Type())
	}
	return nil
}

// convertible rejects the numeric to string conversion reflect allows.
func convertible(from, to reflect.Kind) bool {
	return !(to == reflect.String && from != reflect.String)
}
