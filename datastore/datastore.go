/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"sort"
	"sync"

	"github.com/suparena/unitofwork"
	"github.com/suparena/unitofwork/errors"
)

// Router is a unitofwork.Writer that dispatches each change set to the writer
// registered for its collection, falling back to a default writer when set.
type Router struct {
	mu       sync.RWMutex
	writers  map[string]unitofwork.Writer
	fallback unitofwork.Writer
}

var _ unitofwork.Writer = (*Router)(nil)

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		writers: make(map[string]unitofwork.Writer),
	}
}

// Register routes change sets of collection to w.
func (r *Router) Register(collection string, w unitofwork.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.writers[collection]; exists {
		return errors.NewAlreadyExistsError("writer", collection)
	}
	r.writers[collection] = w
	return nil
}

// SetDefault routes every unregistered collection to w.
func (r *Router) SetDefault(w unitofwork.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = w
}

// Writer returns the writer for collection.
func (r *Router) Writer(collection string) (unitofwork.Writer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if w, ok := r.writers[collection]; ok {
		return w, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, errors.NewNotFoundError("writer", collection)
}

// Collections lists the registered collections in lexical order.
func (r *Router) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.writers))
	for k := range r.writers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Insert implements unitofwork.Writer.
func (r *Router) Insert(ctx context.Context, cs *unitofwork.ChangeSet) (any, error) {
	w, err := r.Writer(cs.Collection)
	if err != nil {
		return nil, err
	}
	return w.Insert(ctx, cs)
}

// Update implements unitofwork.Writer.
func (r *Router) Update(ctx context.Context, cs *unitofwork.ChangeSet) error {
	w, err := r.Writer(cs.Collection)
	if err != nil {
		return err
	}
	return w.Update(ctx, cs)
}
