/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package validation

import (
	stderrors "errors"
	"testing"

	"github.com/suparena/unitofwork/entity"
	"github.com/suparena/unitofwork/errors"
	"github.com/suparena/unitofwork/registry"
)

type Team struct {
	entity.Base
	ID int64 `orm:"id,pk"`
}

type Member struct {
	entity.Base
	ID    int64             `orm:"id,pk"`
	Email *string           `orm:"email,required"`
	Age   int               `orm:"age"`
	Name  string            `orm:"name"`
	Team  entity.Ref[*Team] `orm:"team,required"`
}

func memberMetadata(t *testing.T, rules map[string][]registry.Rule) *registry.EntityMetadata {
	t.Helper()
	meta, err := registry.FromStruct[Member]("members")
	if err != nil {
		t.Fatalf("FromStruct failed: %v", err)
	}
	for name, rs := range rules {
		meta.Properties[name].Rules = rs
	}
	return meta
}

func strPtr(s string) *string { return &s }

func TestRequiredOnInsert(t *testing.T) {
	meta := memberMetadata(t, nil)
	v := New()

	tests := []struct {
		name    string
		member  *Member
		payload map[string]any
		fields  []string
	}{
		{
			name:    "all required present",
			member:  &Member{Base: entity.NewBase(), Email: strPtr("a@b.c"), Team: entity.RefTo(&Team{Base: entity.NewBase()})},
			payload: map[string]any{"email": strPtr("a@b.c"), "age": 0, "name": "", "team": nil},
		},
		{
			name:    "missing email",
			member:  &Member{Base: entity.NewBase(), Team: entity.RefTo(&Team{Base: entity.NewBase()})},
			payload: map[string]any{"age": 0, "name": "", "team": nil},
			fields:  []string{"email"},
		},
		{
			name:    "blank email",
			member:  &Member{Base: entity.NewBase(), Email: strPtr(""), Team: entity.RefTo(&Team{Base: entity.NewBase()})},
			payload: map[string]any{"email": strPtr(""), "age": 0, "name": "", "team": nil},
			fields:  []string{"email"},
		},
		{
			name:    "unset team",
			member:  &Member{Base: entity.NewBase(), Email: strPtr("a@b.c")},
			payload: map[string]any{"email": strPtr("a@b.c"), "age": 0, "name": ""},
			fields:  []string{"team"},
		},
		{
			name:    "team cleared and email missing",
			member:  &Member{Base: entity.NewBase(), Team: entity.NoneOf[*Team]()},
			payload: map[string]any{"age": 0, "name": "", "team": nil},
			fields:  []string{"email", "team"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.member, tt.payload, meta)
			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.IsValidationError(err) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			for _, field := range tt.fields {
				if !hasFieldError(err, field) {
					t.Errorf("Expected violation for %s in %v", field, err)
				}
			}
		})
	}
}

func TestRequiredOnUpdate(t *testing.T) {
	meta := memberMetadata(t, nil)
	v := New()
	m := &Member{Base: entity.NewBase(), ID: 3, Email: strPtr("a@b.c"), Team: entity.RefTo(&Team{Base: entity.NewBase(), ID: 1})}

	if err := v.Validate(m, map[string]any{"age": 40}, meta); err != nil {
		t.Errorf("update without required keys should pass, got %v", err)
	}
	if err := v.Validate(m, map[string]any{"email": nil}, meta); !hasFieldError(err, "email") {
		t.Errorf("clearing a required field should fail, got %v", err)
	}

	m.Team = entity.NoneOf[*Team]()
	if err := v.Validate(m, map[string]any{"team": nil}, meta); !hasFieldError(err, "team") {
		t.Errorf("clearing a required relationship should fail, got %v", err)
	}
}

func TestRules(t *testing.T) {
	meta := memberMetadata(t, map[string][]registry.Rule{
		"age":  {{Name: "adult", Expr: "value >= 18"}},
		"name": {{Name: "not-blank", Expr: "size(value) > 0", Engine: EngineCEL}},
	})
	v := New()
	m := &Member{Base: entity.NewBase(), ID: 1}

	tests := []struct {
		name    string
		payload map[string]any
		rule    string
	}{
		{"expr rule passes", map[string]any{"age": 21}, ""},
		{"expr rule fails", map[string]any{"age": 12}, "adult"},
		{"cel rule passes", map[string]any{"name": "Ada"}, ""},
		{"cel rule fails", map[string]any{"name": ""}, "not-blank"},
		{"nil values skip rules", map[string]any{"name": nil}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(m, tt.payload, meta)
			if tt.rule == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			var ve *errors.ValidationError
			if !stderrors.As(err, &ve) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if ve.Rule != tt.rule || ve.Entity != "Member" || ve.EntityID != m.TransientID() {
				t.Errorf("unexpected error fields %+v", ve)
			}
		})
	}
}

func TestRulesSeePayloadAndEntity(t *testing.T) {
	meta := memberMetadata(t, map[string][]registry.Rule{
		"age": {
			{Name: "matches-entity", Expr: "value == entity.age"},
			{Name: "cel-payload", Expr: "payload.age == value", Engine: EngineCEL},
		},
	})
	m := &Member{Base: entity.NewBase(), ID: 1, Age: 30}

	if err := New().Validate(m, map[string]any{"age": 30}, meta); err != nil {
		t.Errorf("Expected rules to pass, got %v", err)
	}
}

func TestRuleConfigurationErrors(t *testing.T) {
	m := &Member{Base: entity.NewBase(), ID: 1}

	tests := []struct {
		name string
		rule registry.Rule
	}{
		{"unknown engine", registry.Rule{Name: "r", Expr: "true", Engine: "lua"}},
		{"expr syntax", registry.Rule{Name: "r", Expr: "value >= "}},
		{"cel syntax", registry.Rule{Name: "r", Expr: "value ===", Engine: EngineCEL}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := memberMetadata(t, map[string][]registry.Rule{"age": {tt.rule}})
			err := New().Validate(m, map[string]any{"age": 1}, meta)
			if !errors.IsConfigurationError(err) {
				t.Errorf("Expected configuration error, got %v", err)
			}
		})
	}
}

func TestNonBooleanRule(t *testing.T) {
	meta := memberMetadata(t, map[string][]registry.Rule{"age": {{Name: "number", Expr: "value + 1"}}})
	err := New().Validate(&Member{Base: entity.NewBase(), ID: 1}, map[string]any{"age": 1}, meta)
	if !errors.IsValidationError(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestProgramsAreCached(t *testing.T) {
	meta := memberMetadata(t, map[string][]registry.Rule{"age": {{Name: "adult", Expr: "value >= 18"}}})
	v := New()
	m := &Member{Base: entity.NewBase(), ID: 1}

	for i := 0; i < 3; i++ {
		_ = v.Validate(m, map[string]any{"age": 20 + i}, meta)
	}
	if n := v.programs.len(); n != 1 {
		t.Errorf("Expected 1 compiled program, got %d", n)
	}
}

func TestNopAndFunc(t *testing.T) {
	if err := Nop.Validate(nil, nil, nil); err != nil {
		t.Errorf("Nop should accept everything, got %v", err)
	}
	called := false
	f := ValidatorFunc(func(entity.Entity, map[string]any, *registry.EntityMetadata) error {
		called = true
		return nil
	})
	_ = f.Validate(nil, nil, nil)
	if !called {
		t.Error("ValidatorFunc should call through")
	}
}

func hasFieldError(err error, field string) bool {
	if err == nil {
		return false
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if hasFieldError(e, field) {
				return true
			}
		}
		return false
	}
	var ve *errors.ValidationError
	return stderrors.As(err, &ve) && ve.Field == field
}
