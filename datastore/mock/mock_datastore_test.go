/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	"testing"

	"github.com/suparena/unitofwork"
	"github.com/suparena/unitofwork/datastore/mock"
	"github.com/suparena/unitofwork/entity"
	"github.com/suparena/unitofwork/errors"
	"github.com/suparena/unitofwork/identifier"
)

type TestEntity struct {
	entity.Base
	ID int64
}

func changeSet(e entity.Entity, payload map[string]any) *unitofwork.ChangeSet {
	return &unitofwork.ChangeSet{Entity: e, Name: "TestEntity", Collection: "tests", Payload: payload}
}

func TestMockWriter(t *testing.T) {
	ctx := context.Background()

	t.Run("BasicOperations", func(t *testing.T) {
		w := mock.New()
		e := &TestEntity{Base: entity.NewBase()}

		key, err := w.Insert(ctx, changeSet(e, map[string]any{"name": "one"}))
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if key != int64(1) {
			t.Fatalf("Expected first key 1, got %v", key)
		}

		if err := w.Update(ctx, changeSet(e, map[string]any{"name": "uno"})); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		row, err := w.Get("tests", key)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if row["name"] != "uno" {
			t.Fatalf("Expected updated name, got %v", row["name"])
		}

		ops := w.Ops()
		if len(ops) != 2 || ops[0].Type != unitofwork.Insert || ops[1].Type != unitofwork.Update {
			t.Fatalf("unexpected op log %+v", ops)
		}
	})

	t.Run("PlaceholderSubstitution", func(t *testing.T) {
		w := mock.New()
		ids := identifier.NewMap()
		parent := &TestEntity{Base: entity.NewBase()}
		ph := ids.GetOrCreate(parent.TransientID())

		child := &TestEntity{Base: entity.NewBase()}
		cs := changeSet(child, map[string]any{"parent": ph, "tags": []any{int64(9), ph}})

		_, err := w.Insert(ctx, cs)
		if !errors.IsIdentifierResolution(err) {
			t.Fatalf("Expected unresolved placeholder error, got %v", err)
		}
		if w.Count("tests") != 0 {
			t.Fatal("failed insert must not store a row")
		}

		if err := ids.Resolve(parent.TransientID(), int64(7)); err != nil {
			t.Fatal(err)
		}
		key, err := w.Insert(ctx, cs)
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		row, _ := w.Get("tests", key)
		if row["parent"] != int64(7) {
			t.Errorf("Expected parent 7, got %v", row["parent"])
		}
		tags := row["tags"].([]any)
		if tags[0] != int64(9) || tags[1] != int64(7) {
			t.Errorf("Expected tags [9 7], got %v", tags)
		}
	})

	t.Run("ErrorSimulation", func(t *testing.T) {
		insertErr := errors.NewAlreadyExistsError("test", "1")
		w := mock.New().WithInsertError(insertErr)
		e := &TestEntity{Base: entity.NewBase()}

		if _, err := w.Insert(ctx, changeSet(e, nil)); err != insertErr {
			t.Fatalf("Expected insert error, got: %v", err)
		}

		updateErr := errors.NewNotFoundError("test", "1")
		w = mock.New().WithUpdateError(updateErr)
		w.Seed("tests", 1, e, mock.Row{})
		if err := w.Update(ctx, changeSet(e, nil)); err != updateErr {
			t.Fatalf("Expected update error, got: %v", err)
		}
	})

	t.Run("UpdateUnknownEntity", func(t *testing.T) {
		w := mock.New()
		err := w.Update(ctx, changeSet(&TestEntity{Base: entity.NewBase()}, map[string]any{"a": 1}))
		if !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}
	})

	t.Run("KeyFuncAndDuplicates", func(t *testing.T) {
		w := mock.New().WithKeyFunc(func(cs *unitofwork.ChangeSet) any { return cs.Payload["code"] })

		a := &TestEntity{Base: entity.NewBase()}
		if _, err := w.Insert(ctx, changeSet(a, map[string]any{"code": "X"})); err != nil {
			t.Fatal(err)
		}
		b := &TestEntity{Base: entity.NewBase()}
		if _, err := w.Insert(ctx, changeSet(b, map[string]any{"code": "X"})); !errors.IsAlreadyExists(err) {
			t.Fatalf("Expected already exists, got: %v", err)
		}
	})

	t.Run("HelperMethods", func(t *testing.T) {
		w := mock.New()
		e := &TestEntity{Base: entity.NewBase()}
		w.Seed("tests", "k", e, mock.Row{"name": "seeded"})

		if w.Count("tests") != 1 {
			t.Fatalf("Expected count 1, got %d", w.Count("tests"))
		}
		if _, err := w.Get("tests", "missing"); !errors.IsNotFound(err) {
			t.Fatalf("Expected not found, got %v", err)
		}

		w.Clear()
		if w.Count("tests") != 0 || len(w.Ops()) != 0 {
			t.Fatal("Expected empty writer after clear")
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := mock.New().Insert(cctx, changeSet(&TestEntity{Base: entity.NewBase()}, nil)); err == nil {
			t.Fatal("Expected context error")
		}
	})
}
