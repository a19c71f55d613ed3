/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/suparena/unitofwork/entity"
	"github.com/suparena/unitofwork/errors"
)

var (
	referenceType = reflect.TypeOf((*entity.Reference)(nil)).Elem()
	trackedType   = reflect.TypeOf((*entity.Tracked)(nil)).Elem()
)

// FromStruct derives metadata for T from its exported fields and orm tags.
//
// Tag options: pk, required, owner, m:1, m:n, 1:m, target=<Type>, inverse=<prop>.
// Ref fields default to many-to-one and Collection fields to many-to-many, with the
// target taken from the type parameter.
func FromStruct[T any](collection string) (*EntityMetadata, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		t = reflect.TypeOf((*T)(nil)).Elem()
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := entity.TypeNameOf(t)
	if t.Kind() != reflect.Struct {
		return nil, errors.NewConfigurationError(name, "entity type must be a struct")
	}

	meta := &EntityMetadata{
		Name:       name,
		Collection: collection,
		Properties: make(map[string]*PropertyDescriptor),
	}
	for _, f := range reflect.VisibleFields(t) {
		propName, ok := entity.PropertyName(f)
		if !ok {
			continue
		}
		if _, dup := meta.Properties[propName]; dup {
			continue
		}
		p, err := describeField(f, propName)
		if err != nil {
			return nil, errors.NewConfigurationError(name, err.Error())
		}
		if p.Primary {
			meta.PrimaryKey = propName
		}
		meta.Properties[propName] = p
	}
	return meta, nil
}

func describeField(f reflect.StructField, name string) (*PropertyDescriptor, error) {
	p := &PropertyDescriptor{Name: name}
	explicitKind := false

	_, opts := entity.ParseTag(f.Tag.Get(entity.TagName))
	for _, opt := range opts {
		key, value, _ := strings.Cut(opt, "=")
		switch key {
		case "pk", "primary":
			p.Primary = true
		case "required":
			p.Required = true
		case "owner":
			p.Owner = true
		case "target":
			p.Target = value
		case "inverse":
			p.Inverse = value
		default:
			kind, err := ParseReferenceKind(key)
			if err != nil {
				return nil, fmt.Errorf("field %s: unknown tag option %q", f.Name, opt)
			}
			p.Kind = kind
			explicitKind = true
		}
	}

	switch {
	case f.Type.Implements(referenceType):
		if !explicitKind {
			p.Kind = ManyToOne
		}
		if p.Target == "" {
			p.Target = entity.TypeNameOf(reflect.Zero(f.Type).Interface().(entity.Reference).TargetType())
		}
	case f.Type.Implements(trackedType):
		if !explicitKind {
			p.Kind = ManyToMany
		}
		if p.Target == "" {
			p.Target = entity.TypeNameOf(reflect.Zero(f.Type).Interface().(entity.Tracked).TargetType())
		}
	}
	return p, nil
}

// RegisterEntity derives metadata for T and stores it in the process-wide registry.
func RegisterEntity[T any](collection string) error {
	meta, err := FromStruct[T](collection)
	if err != nil {
		return err
	}
	return defaultRegistry.Register(meta)
}
