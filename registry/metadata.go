/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReferenceKind classifies a property.
type ReferenceKind int

const (
	Scalar ReferenceKind = iota
	ManyToOne
	ManyToMany
	OneToMany
)

func (k ReferenceKind) String() string {
	switch k {
	case ManyToOne:
		return "m:1"
	case ManyToMany:
		return "m:n"
	case OneToMany:
		return "1:m"
	default:
		return "scalar"
	}
}

// IsRelationship reports whether the kind points at another entity type.
func (k ReferenceKind) IsRelationship() bool {
	return k != Scalar
}

// IsCollection reports whether the kind is a to-many association.
func (k ReferenceKind) IsCollection() bool {
	return k == ManyToMany || k == OneToMany
}

// ParseReferenceKind accepts the short and long spellings used in tags and YAML.
func ParseReferenceKind(s string) (ReferenceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "scalar":
		return Scalar, nil
	case "m:1", "m2o", "many_to_one", "manytoone":
		return ManyToOne, nil
	case "m:n", "m2m", "many_to_many", "manytomany":
		return ManyToMany, nil
	case "1:m", "o2m", "one_to_many", "onetomany":
		return OneToMany, nil
	}
	return Scalar, fmt.Errorf("unknown reference kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k ReferenceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ReferenceKind) UnmarshalText(text []byte) error {
	parsed, err := ParseReferenceKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// UnmarshalYAML decodes the kind from a scalar node.
func (k *ReferenceKind) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: reference kind must be a scalar", value.Line)
	}
	return k.UnmarshalText([]byte(value.Value))
}

// Rule is a declarative constraint evaluated against a property's new value.
type Rule struct {
	// Name identifies the rule in validation errors.
	Name string `yaml:"name"`
	// Expr must evaluate to a boolean; the value is bound as "value".
	Expr string `yaml:"expr"`
	// Engine is "expr" (default) or "cel".
	Engine string `yaml:"engine,omitempty"`
}

// PropertyDescriptor describes one property of an entity type.
type PropertyDescriptor struct {
	Name string        `yaml:"name"`
	Kind ReferenceKind `yaml:"kind"`
	// Owner marks the side of a many-to-many that writes the join data.
	Owner bool `yaml:"owner,omitempty"`
	// Target is the related entity type name for relationship kinds.
	Target string `yaml:"target,omitempty"`
	// Inverse names the property on Target that maps the other side.
	Inverse  string `yaml:"inverse,omitempty"`
	Primary  bool   `yaml:"primary,omitempty"`
	Required bool   `yaml:"required,omitempty"`
	Rules    []Rule `yaml:"rules,omitempty"`
}

func (p *PropertyDescriptor) clone() *PropertyDescriptor {
	cp := *p
	if p.Rules != nil {
		cp.Rules = append([]Rule(nil), p.Rules...)
	}
	return &cp
}

// EntityMetadata describes an entity type. It is read-only once registered.
type EntityMetadata struct {
	Name       string                         `yaml:"name"`
	Collection string                         `yaml:"collection"`
	PrimaryKey string                         `yaml:"primaryKey"`
	Properties map[string]*PropertyDescriptor `yaml:"-"`
}

// Property returns the named descriptor.
func (m *EntityMetadata) Property(name string) (*PropertyDescriptor, bool) {
	p, ok := m.Properties[name]
	return p, ok
}

// SortedNames returns the property names in lexical order.
func (m *EntityMetadata) SortedNames() []string {
	names := make([]string, 0, len(m.Properties))
	for name := range m.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Relationships returns the relationship descriptors in lexical order.
func (m *EntityMetadata) Relationships() []*PropertyDescriptor {
	var out []*PropertyDescriptor
	for _, name := range m.SortedNames() {
		if p := m.Properties[name]; p.Kind.IsRelationship() {
			out = append(out, p)
		}
	}
	return out
}

func (m *EntityMetadata) clone() *EntityMetadata {
	cp := &EntityMetadata{
		Name:       m.Name,
		Collection: m.Collection,
		PrimaryKey: m.PrimaryKey,
		Properties: make(map[string]*PropertyDescriptor, len(m.Properties)),
	}
	for name, p := range m.Properties {
		cp.Properties[name] = p.clone()
	}
	return cp
}
