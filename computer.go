/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package unitofwork

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/suparena/unitofwork/entity"
	"github.com/suparena/unitofwork/errors"
	"github.com/suparena/unitofwork/identifier"
	"github.com/suparena/unitofwork/metrics"
	"github.com/suparena/unitofwork/registry"
	"github.com/suparena/unitofwork/snapshot"
	"github.com/suparena/unitofwork/validation"
)

// Option configures a Computer.
type Option func(*Computer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Computer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records change-set outcomes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Computer) {
		c.metrics = r
	}
}

// Computer turns tracked entities into change sets. It reads the snapshot store
// and identifier map and never writes to the snapshot store; the only state it
// mutates is the dirty flag of owning-side collections and new placeholders.
// A Computer is safe for concurrent use when its collaborators are.
type Computer struct {
	provider    registry.Provider
	validator   validation.Validator
	snapshots   snapshot.Store
	identifiers *identifier.Map
	logger      *zap.Logger
	metrics     *metrics.Recorder
}

// NewComputer creates a Computer. A nil validator accepts every payload.
func NewComputer(provider registry.Provider, validator validation.Validator, snapshots snapshot.Store, identifiers *identifier.Map, opts ...Option) *Computer {
	if validator == nil {
		validator = validation.Nop
	}
	c := &Computer{
		provider:    provider,
		validator:   validator,
		snapshots:   snapshots,
		identifiers: identifiers,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// ComputeChangeSet returns the pending write for e, or nil when e is persisted
// and nothing changed since its snapshot.
func (c *Computer) ComputeChangeSet(ctx context.Context, e entity.Entity) (*ChangeSet, error) {
	if entity.IsNilEntity(e) {
		return nil, errors.NewConfigurationError("", "entity must not be nil")
	}
	name := entity.TypeName(e)

	cs, err := c.compute(ctx, e, name)
	switch {
	case errors.IsValidationError(err):
		c.metrics.Observe(name, metrics.OutcomeInvalid)
		c.logger.Debug("payload rejected",
			zap.String("entity", name),
			zap.String("transientID", e.TransientID()),
			zap.Error(err))
	case err != nil:
		c.metrics.Observe(name, metrics.OutcomeError)
		c.logger.Warn("change set computation failed",
			zap.String("entity", name),
			zap.String("transientID", e.TransientID()),
			zap.Error(err))
	case cs == nil:
		c.metrics.Observe(name, metrics.OutcomeNoop)
	default:
		c.metrics.Observe(name, cs.Type().String())
		c.logger.Debug("computed change set",
			zap.String("entity", name),
			zap.String("transientID", e.TransientID()),
			zap.Stringer("type", cs.Type()),
			zap.Int("fields", len(cs.Payload)))
	}
	return cs, err
}

func (c *Computer) compute(ctx context.Context, e entity.Entity, name string) (*ChangeSet, error) {
	meta, err := c.provider.Metadata(name)
	if err != nil {
		return nil, err
	}

	persisted, err := hasPersistentID(e, meta)
	if err != nil {
		return nil, err
	}
	payload, typ, err := c.payload(ctx, e, meta, persisted)
	if err != nil {
		return nil, err
	}

	if err := c.validator.Validate(e, payload, meta); err != nil {
		return nil, err
	}

	consumed, err := c.resolveRelationships(e, meta, payload)
	if err != nil {
		return nil, err
	}

	if persisted && len(payload) == 0 {
		return nil, nil
	}
	return &ChangeSet{
		Entity:     e,
		Name:       meta.Name,
		Collection: meta.Collection,
		Payload:    payload,
		typ:        typ,
		consumed:   consumed,
	}, nil
}

// ComputeChangeSets computes a batch in order. A failing entity does not stop the
// pass; its error is joined into the returned error and the others still yield
// their change sets.
func (c *Computer) ComputeChangeSets(ctx context.Context, entities []entity.Entity) ([]*ChangeSet, error) {
	var (
		sets []*ChangeSet
		errs []error
	)
	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		cs, err := c.ComputeChangeSet(ctx, e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if cs != nil {
			sets = append(sets, cs)
		}
	}
	return sets, stderrors.Join(errs...)
}

func (c *Computer) payload(ctx context.Context, e entity.Entity, meta *registry.EntityMetadata, persisted bool) (map[string]any, Type, error) {
	current, err := snapshot.Serialize(e, meta, c.provider)
	if err != nil {
		return nil, Insert, err
	}
	if !persisted {
		return current, Insert, nil
	}

	snap, ok, err := c.snapshots.Get(ctx, e.TransientID())
	if err != nil {
		return nil, Insert, fmt.Errorf("load snapshot for %s: %w", meta.Name, err)
	}
	if !ok {
		return current, Insert, nil
	}
	return diff(current, snap, meta), Update, nil
}

// diff keeps the properties of current that differ from snap. A scalar that was
// set in snap and is unset now is reported as nil; an unset many-to-one is left
// alone because unset means "not touched".
func diff(current map[string]any, snap snapshot.Snapshot, meta *registry.EntityMetadata) map[string]any {
	out := make(map[string]any)
	for name, value := range current {
		old, had := snap.Get(name)
		if !had || !snapshot.Equal(value, old) {
			out[name] = value
		}
	}
	for _, name := range snap.Keys() {
		if _, ok := current[name]; ok {
			continue
		}
		p, ok := meta.Property(name)
		if !ok || p.Kind != registry.Scalar {
			continue
		}
		if old, _ := snap.Get(name); !snapshot.Equal(old, nil) {
			out[name] = nil
		}
	}
	return out
}

// resolveRelationships substitutes placeholders for unpersisted many-to-one
// targets and writes dirty owning-side many-to-many memberships. On failure every
// collection consumed so far is marked dirty again.
func (c *Computer) resolveRelationships(e entity.Entity, meta *registry.EntityMetadata, payload map[string]any) (consumed []entity.Tracked, err error) {
	defer func() {
		if err != nil {
			for _, t := range consumed {
				t.SetDirty(true)
			}
			consumed = nil
		}
	}()

	for _, p := range meta.Relationships() {
		switch p.Kind {
		case registry.ManyToOne:
			raw, ok := entity.Get(e, p.Name)
			if !ok {
				return consumed, notExposed(meta, p)
			}
			state, target, ok := entity.Deref(raw)
			if !ok {
				return consumed, errors.NewConfigurationError(meta.Name, fmt.Sprintf("property %q holds %T, not a reference", p.Name, raw))
			}
			if state != entity.Assigned {
				continue
			}
			key, err := snapshot.PrimaryKeyOf(target, c.provider)
			if err != nil {
				return consumed, err
			}
			if key != nil {
				continue
			}
			ph, err := c.placeholder(meta, p, target)
			if err != nil {
				return consumed, err
			}
			payload[p.Name] = ph

		case registry.ManyToMany:
			if !p.Owner {
				continue
			}
			raw, ok := entity.Get(e, p.Name)
			if !ok {
				return consumed, notExposed(meta, p)
			}
			tracked, ok := asTracked(raw)
			if !ok {
				continue
			}
			members, dirty := tracked.ConsumeDirty()
			if !dirty {
				continue
			}
			consumed = append(consumed, tracked)

			ids := make([]any, 0, len(members))
			for _, m := range members {
				id, err := c.identify(meta, p, m)
				if err != nil {
					return consumed, err
				}
				ids = append(ids, id)
			}
			payload[p.Name] = ids
		}
	}
	return consumed, nil
}

// identify returns a member's primary key, or its placeholder when it has none.
func (c *Computer) identify(meta *registry.EntityMetadata, p *registry.PropertyDescriptor, member entity.Entity) (any, error) {
	if entity.IsNilEntity(member) {
		return nil, errors.NewIdentifierResolutionError(meta.Name, p.Name, "collection holds a nil member")
	}
	key, err := snapshot.PrimaryKeyOf(member, c.provider)
	if err != nil {
		return nil, err
	}
	if key != nil {
		return key, nil
	}
	return c.placeholder(meta, p, member)
}

func (c *Computer) placeholder(meta *registry.EntityMetadata, p *registry.PropertyDescriptor, target entity.Entity) (*identifier.Placeholder, error) {
	tid := target.TransientID()
	if tid == "" {
		return nil, errors.NewIdentifierResolutionError(meta.Name, p.Name,
			fmt.Sprintf("%s has neither a primary key nor a transient identifier", entity.TypeName(target)))
	}
	if c.identifiers == nil {
		return nil, errors.NewIdentifierResolutionError(meta.Name, p.Name, "no identifier map configured")
	}
	return c.identifiers.GetOrCreate(tid), nil
}

func notExposed(meta *registry.EntityMetadata, p *registry.PropertyDescriptor) error {
	return errors.NewConfigurationError(meta.Name, fmt.Sprintf("property %q is not exposed by the entity", p.Name))
}

func hasPersistentID(e entity.Entity, meta *registry.EntityMetadata) (bool, error) {
	key, ok := entity.Get(e, meta.PrimaryKey)
	if !ok {
		return false, errors.NewConfigurationError(meta.Name, fmt.Sprintf("primary key %q is not accessible", meta.PrimaryKey))
	}
	return !entity.IsZero(key), nil
}

func asTracked(v any) (entity.Tracked, bool) {
	t, ok := v.(entity.Tracked)
	if !ok {
		return nil, false
	}
	rv := reflect.ValueOf(t)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false
	}
	return t, true
}
