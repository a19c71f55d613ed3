/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identifier

import (
	"fmt"
	"sync"
)

// Placeholder stands in for the primary key an entity will receive once it is
// inserted. Tokens are compared by pointer: every referrer of the same entity
// within a flush cycle holds the same *Placeholder.
type Placeholder struct {
	tid string

	mu       sync.RWMutex
	value    any
	resolved bool
}

// TransientID returns the transient identifier of the entity the token stands for.
func (p *Placeholder) TransientID() string {
	return p.tid
}

// Value returns the concrete key once the write engine has resolved the token.
func (p *Placeholder) Value() (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value, p.resolved
}

// Resolved reports whether a concrete key has been assigned.
func (p *Placeholder) Resolved() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.resolved
}

func (p *Placeholder) String() string {
	if v, ok := p.Value(); ok {
		return fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("placeholder(%s)", p.tid)
}

func (p *Placeholder) resolve(key any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = key
	p.resolved = true
}
