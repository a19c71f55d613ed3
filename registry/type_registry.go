/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/suparena/unitofwork/errors"
)

// Provider exposes entity metadata by type name.
type Provider interface {
	Metadata(typeName string) (*EntityMetadata, error)
}

// Registry holds the metadata of every registered entity type. It is populated at
// process start and sealed before the first flush; lookups never block on writers
// after that.
type Registry struct {
	mu     sync.RWMutex
	types  map[string]*EntityMetadata
	sealed bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{types: make(map[string]*EntityMetadata)}
}

// Register validates and stores a copy of meta.
func (r *Registry) Register(meta *EntityMetadata) error {
	if meta == nil {
		return errors.NewConfigurationError("", "metadata must not be nil")
	}
	cp := meta.clone()
	if err := normalize(cp); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.NewConfigurationError(cp.Name, "registry is sealed")
	}
	if _, exists := r.types[cp.Name]; exists {
		return errors.NewAlreadyExistsError("entity type", cp.Name)
	}
	r.types[cp.Name] = cp
	return nil
}

// MustRegister is like Register but panics, which suits init() registration.
func (r *Registry) MustRegister(meta *EntityMetadata) {
	if err := r.Register(meta); err != nil {
		panic(fmt.Sprintf("type registry: %v", err))
	}
}

// Metadata implements Provider. The returned value must not be modified.
func (r *Registry) Metadata(typeName string) (*EntityMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.types[typeName]
	if !ok {
		return nil, errors.NewConfigurationError(typeName, "type is not registered")
	}
	return meta, nil
}

// Names returns the registered type names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Seal rejects further registrations.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

func normalize(meta *EntityMetadata) error {
	if meta.Name == "" {
		return errors.NewConfigurationError("", "entity name is required")
	}
	if meta.Collection == "" {
		meta.Collection = meta.Name
	}
	var flagged []string
	for key, p := range meta.Properties {
		if p.Name == "" {
			p.Name = key
		}
		if p.Name != key {
			return errors.NewConfigurationError(meta.Name, fmt.Sprintf("property key %q does not match descriptor name %q", key, p.Name))
		}
		if p.Kind.IsRelationship() && p.Target == "" {
			return errors.NewConfigurationError(meta.Name, fmt.Sprintf("relationship %q has no target type", key))
		}
		if p.Owner && p.Kind != ManyToMany {
			return errors.NewConfigurationError(meta.Name, fmt.Sprintf("property %q: only many-to-many properties can be owners", key))
		}
		if p.Primary {
			flagged = append(flagged, key)
		}
	}
	sort.Strings(flagged)
	switch {
	case len(flagged) > 1:
		return errors.NewConfigurationError(meta.Name, fmt.Sprintf("properties %s are all marked primary", strings.Join(flagged, ", ")))
	case len(flagged) == 1 && meta.PrimaryKey == "":
		meta.PrimaryKey = flagged[0]
	case len(flagged) == 1 && meta.PrimaryKey != flagged[0]:
		return errors.NewConfigurationError(meta.Name, fmt.Sprintf("primary key %q conflicts with property %q marked primary", meta.PrimaryKey, flagged[0]))
	}
	if meta.PrimaryKey == "" {
		return errors.NewConfigurationError(meta.Name, "primary key is required")
	}
	pk, ok := meta.Properties[meta.PrimaryKey]
	if !ok {
		return errors.NewConfigurationError(meta.Name, fmt.Sprintf("primary key %q is not a declared property", meta.PrimaryKey))
	}
	if pk.Kind != Scalar {
		return errors.NewConfigurationError(meta.Name, fmt.Sprintf("primary key %q must be scalar", meta.PrimaryKey))
	}
	for name, p := range meta.Properties {
		p.Primary = name == meta.PrimaryKey
	}
	return nil
}

var defaultRegistry = New()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register stores meta in the process-wide registry.
func Register(meta *EntityMetadata) error {
	return defaultRegistry.Register(meta)
}

// GetMetadata looks up typeName in the process-wide registry.
func GetMetadata(typeName string) (*EntityMetadata, error) {
	return defaultRegistry.Metadata(typeName)
}
