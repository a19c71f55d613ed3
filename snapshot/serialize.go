/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package snapshot

import (
	"fmt"
	"reflect"

	"github.com/suparena/unitofwork/entity"
	"github.com/suparena/unitofwork/errors"
	"github.com/suparena/unitofwork/registry"
)

// Serialize returns the scalar and foreign-key-bearing properties of e that are
// currently set. Nil pointers are unset, an absent primary key is left out, and a
// many-to-one property contributes the referenced entity's primary key (nil when the
// target is set to none or is not persisted yet). To-many properties are never included.
func Serialize(e entity.Entity, meta *registry.EntityMetadata, provider registry.Provider) (map[string]any, error) {
	out := make(map[string]any, len(meta.Properties))
	for name, p := range meta.Properties {
		switch p.Kind {
		case registry.Scalar:
			v, ok := entity.Get(e, name)
			if !ok {
				return nil, notExposed(meta, name)
			}
			if isNilValue(v) {
				continue
			}
			if p.Primary && entity.IsZero(v) {
				continue
			}
			out[name] = v
		case registry.ManyToOne:
			v, ok := entity.Get(e, name)
			if !ok {
				return nil, notExposed(meta, name)
			}
			key, set, err := ForeignKey(v, p, provider)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", meta.Name, name, err)
			}
			if set {
				out[name] = key
			}
		}
	}
	return out, nil
}

func notExposed(meta *registry.EntityMetadata, name string) error {
	return errors.NewConfigurationError(meta.Name, fmt.Sprintf("property %q is not exposed by the entity", name))
}

// ForeignKey returns the key a many-to-one value contributes to a payload and whether
// the relationship is set at all.
func ForeignKey(v any, p *registry.PropertyDescriptor, provider registry.Provider) (any, bool, error) {
	state, target, ok := entity.Deref(v)
	if !ok {
		return nil, false, errors.NewConfigurationError(p.Target, fmt.Sprintf("property %q holds %T, not a reference", p.Name, v))
	}
	switch state {
	case entity.Unset:
		return nil, false, nil
	case entity.None:
		return nil, true, nil
	}
	key, err := PrimaryKeyOf(target, provider)
	if err != nil {
		return nil, false, err
	}
	return key, true, nil
}

// PrimaryKeyOf returns the persistent identifier of e, or nil when it has none yet.
func PrimaryKeyOf(e entity.Entity, provider registry.Provider) (any, error) {
	meta, err := provider.Metadata(entity.TypeName(e))
	if err != nil {
		return nil, err
	}
	key, _ := entity.Get(e, meta.PrimaryKey)
	if entity.IsZero(key) {
		return nil, nil
	}
	return key, nil
}

// Take captures the current state of e. Pointer values are dereferenced and
// slices and maps are copied one level deep so later mutation of the live entity
// does not leak into the snapshot.
func Take(e entity.Entity, meta *registry.EntityMetadata, provider registry.Provider) (Snapshot, error) {
	values, err := Serialize(e, meta, provider)
	if err != nil {
		return Snapshot{}, err
	}
	for k, v := range values {
		values[k] = detach(v)
	}
	return Snapshot{values: values}, nil
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func detach(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return rv.Interface()
		}
		cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(cp, rv)
		return cp.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return rv.Interface()
		}
		cp := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			cp.SetMapIndex(iter.Key(), iter.Value())
		}
		return cp.Interface()
	}
	if !rv.CanInterface() {
		return v
	}
	return rv.Interface()
}
