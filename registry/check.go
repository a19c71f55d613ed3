/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/suparena/unitofwork/errors"
)

// Check cross-validates the registered types: every relationship target must be
// registered, inverse properties must exist with a matching kind, and each
// many-to-many pair must have exactly one owning side. A many-to-many without an
// inverse is the only side, so it must own. All problems are returned joined.
func (r *Registry) Check() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var problems []error
	for _, name := range sortedKeys(r.types) {
		meta := r.types[name]
		for _, p := range meta.Relationships() {
			target, ok := r.types[p.Target]
			if !ok {
				problems = append(problems, errors.NewConfigurationError(name,
					fmt.Sprintf("property %q targets unregistered type %q", p.Name, p.Target)))
				continue
			}
			if p.Inverse == "" {
				if p.Kind == ManyToMany && !p.Owner {
					problems = append(problems, errors.NewConfigurationError(name,
						fmt.Sprintf("property %q: many-to-many without an inverse must own the association", p.Name)))
				}
				continue
			}
			inv, ok := target.Properties[p.Inverse]
			if !ok {
				problems = append(problems, errors.NewConfigurationError(name,
					fmt.Sprintf("property %q: inverse %s.%s does not exist", p.Name, p.Target, p.Inverse)))
				continue
			}
			if want := inverseKind(p.Kind); inv.Kind != want {
				problems = append(problems, errors.NewConfigurationError(name,
					fmt.Sprintf("property %q: inverse %s.%s is %s, expected %s", p.Name, p.Target, p.Inverse, inv.Kind, want)))
				continue
			}
			if p.Kind == ManyToMany && p.Owner == inv.Owner {
				problems = append(problems, errors.NewConfigurationError(name,
					fmt.Sprintf("property %q: exactly one side of %s.%s <-> %s.%s must own the association", p.Name, name, p.Name, p.Target, p.Inverse)))
			}
		}
	}
	return stderrors.Join(problems...)
}

func inverseKind(k ReferenceKind) ReferenceKind {
	switch k {
	case ManyToOne:
		return OneToMany
	case OneToMany:
		return ManyToOne
	default:
		return k
	}
}

func sortedKeys(m map[string]*EntityMetadata) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
