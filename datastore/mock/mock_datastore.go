/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory write engine for testing unit-of-work commits
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/suparena/unitofwork"
	"github.com/suparena/unitofwork/entity"
	"github.com/suparena/unitofwork/errors"
	"github.com/suparena/unitofwork/identifier"
)

// Row is one stored record: property name to written value.
type Row map[string]any

// Op records a write in the order it happened.
type Op struct {
	Type       unitofwork.Type
	Collection string
	Key        any
	Payload    Row
}

// Writer is an in-memory unitofwork.Writer. Inserts get sequential int64 keys
// unless a key function is set. Resolved placeholders in payloads are replaced by
// their keys; an unresolved placeholder fails the write, as a real engine would
// fail on a missing foreign key.
type Writer struct {
	mu          sync.RWMutex
	rows        map[string]map[string]Row
	keys        map[string]any
	ops         []Op
	nextKey     int64
	keyFunc     func(cs *unitofwork.ChangeSet) any
	insertError error
	updateError error
}

var _ unitofwork.Writer = (*Writer)(nil)

// New creates an empty Writer.
func New() *Writer {
	return &Writer{
		rows: make(map[string]map[string]Row),
		keys: make(map[string]any),
	}
}

// WithKeyFunc sets a custom function that picks the key of an inserted row
func (m *Writer) WithKeyFunc(f func(cs *unitofwork.ChangeSet) any) *Writer {
	m.keyFunc = f
	return m
}

// WithInsertError makes Insert operations return an error
func (m *Writer) WithInsertError(err error) *Writer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertError = err
	return m
}

// WithUpdateError makes Update operations return an error
func (m *Writer) WithUpdateError(err error) *Writer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateError = err
	return m
}

// Insert implements unitofwork.Writer.
func (m *Writer) Insert(ctx context.Context, cs *unitofwork.ChangeSet) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row, err := substitute(cs)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertError != nil {
		return nil, m.insertError
	}

	var key any
	if m.keyFunc != nil {
		key = m.keyFunc(cs)
	} else {
		m.nextKey++
		key = m.nextKey
	}
	id := fmt.Sprint(key)
	if _, exists := m.table(cs.Collection)[id]; exists {
		return nil, errors.NewAlreadyExistsError(cs.Collection, id)
	}

	m.table(cs.Collection)[id] = row
	m.keys[cs.Entity.TransientID()] = key
	m.ops = append(m.ops, Op{Type: unitofwork.Insert, Collection: cs.Collection, Key: key, Payload: copyRow(row)})
	return key, nil
}

// Update implements unitofwork.Writer. The row is found by the entity's
// transient identifier, so the entity must have been inserted or seeded first.
func (m *Writer) Update(ctx context.Context, cs *unitofwork.ChangeSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	changes, err := substitute(cs)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateError != nil {
		return m.updateError
	}

	key, ok := m.keys[cs.Entity.TransientID()]
	if !ok {
		return errors.NewNotFoundError(cs.Name, cs.Entity.TransientID())
	}
	row, ok := m.table(cs.Collection)[fmt.Sprint(key)]
	if !ok {
		return errors.NewNotFoundError(cs.Collection, fmt.Sprint(key))
	}
	for k, v := range changes {
		row[k] = v
	}
	m.ops = append(m.ops, Op{Type: unitofwork.Update, Collection: cs.Collection, Key: key, Payload: copyRow(changes)})
	return nil
}

// Helper methods for testing

// Seed stores a row for an entity loaded from storage, so later updates find it.
func (m *Writer) Seed(collection string, key any, e entity.Entity, row Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.table(collection)[fmt.Sprint(key)] = copyRow(row)
	m.keys[e.TransientID()] = key
}

// Get returns a copy of the row stored under key.
func (m *Writer) Get(collection string, key any) (Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[collection][fmt.Sprint(key)]
	if !ok {
		return nil, errors.NewNotFoundError(collection, fmt.Sprint(key))
	}
	return copyRow(row), nil
}

// Count returns the number of rows in collection.
func (m *Writer) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows[collection])
}

// Ops returns the writes performed so far.
func (m *Writer) Ops() []Op {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Op, len(m.ops))
	copy(out, m.ops)
	return out
}

// Clear removes all rows and history.
func (m *Writer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make(map[string]map[string]Row)
	m.keys = make(map[string]any)
	m.ops = nil
	m.nextKey = 0
}

func (m *Writer) table(collection string) map[string]Row {
	t, ok := m.rows[collection]
	if !ok {
		t = make(map[string]Row)
		m.rows[collection] = t
	}
	return t
}

// substitute copies the payload with placeholders replaced by their keys.
func substitute(cs *unitofwork.ChangeSet) (Row, error) {
	row := make(Row, len(cs.Payload))
	for name, v := range cs.Payload {
		resolved, err := resolveValue(cs, name, v)
		if err != nil {
			return nil, err
		}
		row[name] = resolved
	}
	return row, nil
}

func resolveValue(cs *unitofwork.ChangeSet, name string, v any) (any, error) {
	switch t := v.(type) {
	case *identifier.Placeholder:
		key, ok := t.Value()
		if !ok {
			return nil, errors.NewIdentifierResolutionError(cs.Name, name,
				fmt.Sprintf("placeholder for %s is unresolved", t.TransientID()))
		}
		return key, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			r, err := resolveValue(cs, name, item)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	return v, nil
}

func copyRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
