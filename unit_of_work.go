/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package unitofwork

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/suparena/unitofwork/entity"
	"github.com/suparena/unitofwork/errors"
	"github.com/suparena/unitofwork/snapshot"
)

// UnitOfWork tracks entities between flushes and commits their change sets to a
// Writer. Entities are computed and written in the order they were first persisted
// or merged, so referenced entities must be tracked before their dependents.
type UnitOfWork struct {
	computer *Computer

	mu      sync.Mutex
	order   []entity.Entity
	tracked map[string]int
}

// NewUnitOfWork creates an empty unit of work around c.
func NewUnitOfWork(c *Computer) *UnitOfWork {
	return &UnitOfWork{
		computer: c,
		tracked:  make(map[string]int),
	}
}

// Persist schedules e for insertion or update at the next commit. Persisting an
// entity twice is a no-op.
func (u *UnitOfWork) Persist(e entity.Entity) error {
	if entity.IsNilEntity(e) {
		return errors.NewConfigurationError("", "entity must not be nil")
	}
	name := entity.TypeName(e)
	if _, err := u.computer.provider.Metadata(name); err != nil {
		return err
	}
	if e.TransientID() == "" {
		return errors.NewConfigurationError(name, "entity has no transient identifier; build it with entity.NewBase")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.tracked[e.TransientID()]; ok {
		return nil
	}
	u.tracked[e.TransientID()] = len(u.order)
	u.order = append(u.order, e)
	return nil
}

// Merge tracks an entity loaded from storage and records its current state as
// the snapshot, so only later changes are written.
func (u *UnitOfWork) Merge(ctx context.Context, e entity.Entity) error {
	if err := u.Persist(e); err != nil {
		return err
	}
	meta, err := u.computer.provider.Metadata(entity.TypeName(e))
	if err != nil {
		return err
	}
	snap, err := snapshot.Take(e, meta, u.computer.provider)
	if err != nil {
		return err
	}
	if err := u.computer.snapshots.Put(ctx, e.TransientID(), snap); err != nil {
		return fmt.Errorf("store snapshot for %s: %w", meta.Name, err)
	}
	return nil
}

// Remove stops tracking e and drops its snapshot.
func (u *UnitOfWork) Remove(ctx context.Context, e entity.Entity) error {
	if entity.IsNilEntity(e) {
		return nil
	}
	tid := e.TransientID()

	u.mu.Lock()
	idx, ok := u.tracked[tid]
	if ok {
		u.order = append(u.order[:idx], u.order[idx+1:]...)
		delete(u.tracked, tid)
		for i := idx; i < len(u.order); i++ {
			u.tracked[u.order[i].TransientID()] = i
		}
	}
	u.mu.Unlock()

	if !ok {
		return errors.NewNotFoundError(entity.TypeName(e), tid)
	}
	return u.computer.snapshots.Remove(ctx, tid)
}

// Contains reports whether e is tracked.
func (u *UnitOfWork) Contains(e entity.Entity) bool {
	if entity.IsNilEntity(e) {
		return false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.tracked[e.TransientID()]
	return ok
}

// Entities returns the tracked entities in commit order.
func (u *UnitOfWork) Entities() []entity.Entity {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]entity.Entity, len(u.order))
	copy(out, u.order)
	return out
}

// ComputeChangeSets computes the change sets of every tracked entity.
func (u *UnitOfWork) ComputeChangeSets(ctx context.Context) ([]*ChangeSet, error) {
	return u.computer.ComputeChangeSets(ctx, u.Entities())
}

// Commit computes every change set and hands them to w in commit order. Any
// computation error aborts before the first write. After each insert the
// assigned key is stored on the entity and its placeholder is resolved; every
// written entity gets a fresh snapshot. The identifier map is reset at the end.
//
// On failure, collections of change sets that were not written are marked dirty
// again so the next commit retries them.
func (u *UnitOfWork) Commit(ctx context.Context, w Writer) (err error) {
	started := time.Now()
	c := u.computer
	defer func() {
		c.metrics.ObserveCommit(started, err)
		if c.identifiers != nil {
			c.identifiers.Reset()
		}
	}()

	sets, err := u.ComputeChangeSets(ctx)
	if err != nil {
		for _, cs := range sets {
			cs.restoreDirty()
		}
		return err
	}

	for i, cs := range sets {
		if err := u.write(ctx, w, cs); err != nil {
			for _, pending := range sets[i:] {
				pending.restoreDirty()
			}
			c.logger.Error("commit failed",
				zap.String("entity", cs.Name),
				zap.String("transientID", cs.Entity.TransientID()),
				zap.Stringer("type", cs.Type()),
				zap.Int("written", i),
				zap.Error(err))
			return err
		}
	}

	c.logger.Info("commit complete",
		zap.Int("changeSets", len(sets)),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}

func (u *UnitOfWork) write(ctx context.Context, w Writer, cs *ChangeSet) error {
	c := u.computer
	meta, err := c.provider.Metadata(cs.Name)
	if err != nil {
		return err
	}
	tid := cs.Entity.TransientID()

	switch cs.Type() {
	case Insert:
		key, err := w.Insert(ctx, cs)
		if err != nil {
			return fmt.Errorf("insert %s: %w", cs.Name, err)
		}
		if key != nil {
			if err := entity.Set(cs.Entity, meta.PrimaryKey, key); err != nil {
				return fmt.Errorf("assign key to %s: %w", cs.Name, err)
			}
		}
		if key, err = snapshot.PrimaryKeyOf(cs.Entity, c.provider); err != nil {
			return err
		}
		if key == nil {
			return errors.NewIdentifierResolutionError(cs.Name, meta.PrimaryKey, "insert produced no primary key")
		}
		if c.identifiers != nil {
			if _, ok := c.identifiers.Lookup(tid); ok {
				if err := c.identifiers.Resolve(tid, key); err != nil {
					return err
				}
			}
		}
	case Update:
		if err := w.Update(ctx, cs); err != nil {
			return fmt.Errorf("update %s: %w", cs.Name, err)
		}
	}
	cs.consumed = nil

	snap, err := snapshot.Take(cs.Entity, meta, c.provider)
	if err != nil {
		return err
	}
	if err := c.snapshots.Put(ctx, tid, snap); err != nil {
		return fmt.Errorf("store snapshot for %s: %w", cs.Name, err)
	}
	return nil
}
