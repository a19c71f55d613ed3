/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package unitofwork_test

import (
	"context"
	"testing"
	"time"

	"github.com/suparena/unitofwork"
	"github.com/suparena/unitofwork/entity"
	"github.com/suparena/unitofwork/identifier"
	"github.com/suparena/unitofwork/registry"
	"github.com/suparena/unitofwork/snapshot"
	"github.com/suparena/unitofwork/validation"
)

type Author struct {
	entity.Base
	ID   int64      `orm:"id,pk"`
	Name string     `orm:"name,required"`
	Born *time.Time `orm:"born"`
}

type Tag struct {
	entity.Base
	ID    int64                     `orm:"id,pk"`
	Label string                    `orm:"label"`
	Books *entity.Collection[*Book] `orm:"books,inverse=tags"`
}

type Book struct {
	entity.Base
	ID     int64                    `orm:"id,pk"`
	Title  string                   `orm:"title,required"`
	Pages  int                      `orm:"pages"`
	Author entity.Ref[*Author]      `orm:"author"`
	Tags   *entity.Collection[*Tag] `orm:"tags,owner,inverse=books"`
}

type fixture struct {
	registry  *registry.Registry
	snapshots *snapshot.MemoryStore
	ids       *identifier.Map
	computer  *unitofwork.Computer
}

func newFixture(t *testing.T, validator validation.Validator, opts ...unitofwork.Option) *fixture {
	t.Helper()
	reg := registry.New()
	for _, build := range []func() (*registry.EntityMetadata, error){
		func() (*registry.EntityMetadata, error) { return registry.FromStruct[Author]("authors") },
		func() (*registry.EntityMetadata, error) { return registry.FromStruct[Book]("books") },
		func() (*registry.EntityMetadata, error) { return registry.FromStruct[Tag]("tags") },
	} {
		meta, err := build()
		if err != nil {
			t.Fatalf("FromStruct failed: %v", err)
		}
		reg.MustRegister(meta)
	}
	reg.Seal()

	f := &fixture{
		registry:  reg,
		snapshots: snapshot.NewMemoryStore(),
		ids:       identifier.NewMap(),
	}
	f.computer = unitofwork.NewComputer(reg, validator, f.snapshots, f.ids, opts...)
	return f
}

// markPersisted records the entity's current state as its snapshot.
func (f *fixture) markPersisted(t *testing.T, e entity.Entity) {
	t.Helper()
	meta, err := f.registry.Metadata(entity.TypeName(e))
	if err != nil {
		t.Fatal(err)
	}
	snap, err := snapshot.Take(e, meta, f.registry)
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if err := f.snapshots.Put(context.Background(), e.TransientID(), snap); err != nil {
		t.Fatal(err)
	}
}

func keys(m map[string]any) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
