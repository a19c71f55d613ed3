/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"strings"
	"testing"

	"github.com/suparena/unitofwork/entity"
	"github.com/suparena/unitofwork/errors"
)

type Author struct {
	entity.Base
	ID    int64                     `orm:"id,pk"`
	Name  string                    `orm:"name,required"`
	Books *entity.Collection[*Book] `orm:"books,1:m,inverse=author"`
}

type Tag struct {
	entity.Base
	ID    string                    `orm:"id,pk"`
	Books *entity.Collection[*Book] `orm:"books,inverse=tags"`
}

type Book struct {
	entity.Base
	ID       int64                    `orm:"id,pk"`
	Title    string                   `orm:"title,required"`
	Internal string                   `orm:"-"`
	Author   entity.Ref[*Author]      `orm:"author,inverse=books"`
	Tags     *entity.Collection[*Tag] `orm:"tags,owner,inverse=books"`
}

func libraryRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := New()
	for _, build := range []func() (*EntityMetadata, error){
		func() (*EntityMetadata, error) { return FromStruct[Author]("authors") },
		func() (*EntityMetadata, error) { return FromStruct[*Book]("books") },
		func() (*EntityMetadata, error) { return FromStruct[Tag]("tags") },
	} {
		meta, err := build()
		if err != nil {
			t.Fatalf("FromStruct failed: %v", err)
		}
		if err := reg.Register(meta); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	return reg
}

func TestFromStruct(t *testing.T) {
	meta, err := FromStruct[Book]("books")
	if err != nil {
		t.Fatalf("FromStruct failed: %v", err)
	}

	if meta.Name != "Book" || meta.Collection != "books" || meta.PrimaryKey != "id" {
		t.Errorf("unexpected metadata header: %+v", meta)
	}
	if _, ok := meta.Property("Internal"); ok {
		t.Error("fields tagged - should be skipped")
	}

	tests := []struct {
		prop   string
		kind   ReferenceKind
		target string
		owner  bool
	}{
		{prop: "id", kind: Scalar},
		{prop: "title", kind: Scalar},
		{prop: "author", kind: ManyToOne, target: "Author"},
		{prop: "tags", kind: ManyToMany, target: "Tag", owner: true},
	}
	for _, tt := range tests {
		t.Run(tt.prop, func(t *testing.T) {
			p, ok := meta.Property(tt.prop)
			if !ok {
				t.Fatalf("property %q missing", tt.prop)
			}
			if p.Kind != tt.kind || p.Target != tt.target || p.Owner != tt.owner {
				t.Errorf("got kind=%s target=%q owner=%v", p.Kind, p.Target, p.Owner)
			}
		})
	}

	if title, _ := meta.Property("title"); !title.Required {
		t.Error("title should be required")
	}
}

func TestFromStructRejectsUnknownOption(t *testing.T) {
	type Broken struct {
		ID int `orm:"id,pk,sideways"`
	}
	_, err := FromStruct[Broken]("broken")
	if !errors.IsConfigurationError(err) {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		meta *EntityMetadata
		want string
	}{
		{
			name: "missing name",
			meta: &EntityMetadata{},
			want: "entity name is required",
		},
		{
			name: "missing primary key",
			meta: &EntityMetadata{Name: "X", Properties: map[string]*PropertyDescriptor{"a": {}}},
			want: "primary key is required",
		},
		{
			name: "undeclared primary key",
			meta: &EntityMetadata{Name: "X", PrimaryKey: "id", Properties: map[string]*PropertyDescriptor{}},
			want: "is not a declared property",
		},
		{
			name: "relationship without target",
			meta: &EntityMetadata{Name: "X", PrimaryKey: "id", Properties: map[string]*PropertyDescriptor{
				"id":     {},
				"parent": {Kind: ManyToOne},
			}},
			want: "has no target type",
		},
		{
			name: "owner on many-to-one",
			meta: &EntityMetadata{Name: "X", PrimaryKey: "id", Properties: map[string]*PropertyDescriptor{
				"id":     {},
				"parent": {Kind: ManyToOne, Target: "X", Owner: true},
			}},
			want: "only many-to-many",
		},
		{
			name: "two properties marked primary",
			meta: &EntityMetadata{Name: "X", Properties: map[string]*PropertyDescriptor{
				"id":   {Primary: true},
				"code": {Primary: true},
			}},
			want: "properties code, id are all marked primary",
		},
		{
			name: "primary flag conflicts with primary key",
			meta: &EntityMetadata{Name: "X", PrimaryKey: "id", Properties: map[string]*PropertyDescriptor{
				"id":   {},
				"code": {Primary: true},
			}},
			want: `primary key "id" conflicts with property "code"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Register(tt.meta)
			if !errors.IsConfigurationError(err) {
				t.Fatalf("Expected configuration error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestRegisterDefaultsAndCopies(t *testing.T) {
	meta := &EntityMetadata{
		Name:       "Note",
		PrimaryKey: "id",
		Properties: map[string]*PropertyDescriptor{"id": {}, "body": {}},
	}
	reg := New()
	if err := reg.Register(meta); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	meta.Properties["body"].Required = true

	got, err := reg.Metadata("Note")
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if got.Collection != "Note" {
		t.Errorf("Expected collection to default to the name, got %q", got.Collection)
	}
	if got.Properties["body"].Required {
		t.Error("registered metadata should not see later caller mutations")
	}
	if !got.Properties["id"].Primary || got.Properties["id"].Name != "id" {
		t.Errorf("primary key descriptor not normalized: %+v", got.Properties["id"])
	}
}

func TestRegisterDuplicateAndSeal(t *testing.T) {
	reg := libraryRegistry(t)

	meta, _ := FromStruct[Book]("books")
	if err := reg.Register(meta); !errors.IsAlreadyExists(err) {
		t.Errorf("Expected already exists error, got %v", err)
	}

	reg.Seal()
	if !reg.Sealed() {
		t.Fatal("registry should report sealed")
	}
	err := reg.Register(&EntityMetadata{Name: "Late", PrimaryKey: "id", Properties: map[string]*PropertyDescriptor{"id": {}}})
	if !errors.IsConfigurationError(err) {
		t.Errorf("Expected configuration error after seal, got %v", err)
	}
}

func TestMetadataUnknownType(t *testing.T) {
	_, err := New().Metadata("Ghost")
	if !errors.IsConfigurationError(err) {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestMustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRegister should panic on invalid metadata")
		}
	}()
	New().MustRegister(&EntityMetadata{})
}

func TestCheck(t *testing.T) {
	reg := libraryRegistry(t)
	if err := reg.Check(); err != nil {
		t.Fatalf("Check failed on a consistent registry: %v", err)
	}
	if got := reg.Names(); strings.Join(got, ",") != "Author,Book,Tag" {
		t.Errorf("unexpected names %v", got)
	}
}

func TestCheckOneSidedManyToMany(t *testing.T) {
	tests := []struct {
		name  string
		owner bool
		valid bool
	}{
		{"owned", true, true},
		{"unowned", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New()
			reg.MustRegister(&EntityMetadata{
				Name:       "Post",
				PrimaryKey: "id",
				Properties: map[string]*PropertyDescriptor{
					"id":     {},
					"labels": {Kind: ManyToMany, Target: "Label", Owner: tt.owner},
				},
			})
			reg.MustRegister(&EntityMetadata{Name: "Label", PrimaryKey: "id", Properties: map[string]*PropertyDescriptor{"id": {}}})

			err := reg.Check()
			if tt.valid && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if !tt.valid && !errors.IsConfigurationError(err) {
				t.Errorf("Expected configuration error, got %v", err)
			}
		})
	}
}

func TestCheckReportsProblems(t *testing.T) {
	reg := New()
	reg.MustRegister(&EntityMetadata{
		Name:       "Post",
		PrimaryKey: "id",
		Properties: map[string]*PropertyDescriptor{
			"id":       {},
			"author":   {Kind: ManyToOne, Target: "User"},
			"labels":   {Kind: ManyToMany, Target: "Label", Owner: true, Inverse: "posts"},
			"comments": {Kind: OneToMany, Target: "Label", Inverse: "missing"},
			"related":  {Kind: ManyToMany, Target: "Label"},
		},
	})
	reg.MustRegister(&EntityMetadata{
		Name:       "Label",
		PrimaryKey: "id",
		Properties: map[string]*PropertyDescriptor{
			"id":    {},
			"posts": {Kind: ManyToMany, Target: "Post", Owner: true, Inverse: "labels"},
		},
	})

	err := reg.Check()
	if !errors.IsConfigurationError(err) {
		t.Fatalf("Expected configuration error, got %v", err)
	}
	for _, want := range []string{
		`unregistered type "User"`,
		"inverse Label.missing does not exist",
		"exactly one side",
		`property "related": many-to-many without an inverse must own`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %q", want, err.Error())
		}
	}
}

func TestLoadYAML(t *testing.T) {
	src := `
entities:
  - name: Author
    collection: authors
    primaryKey: id
    properties:
      - name: id
      - name: name
        required: true
        rules:
          - name: short
            expr: len(value) < 50
  - name: Book
    collection: books
    properties:
      - name: id
        primary: true
      - name: author
        kind: m:1
        target: Author
      - name: tags
        kind: many_to_many
        target: Tag
        owner: true
`
	metas, err := LoadYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("Expected 2 entities, got %d", len(metas))
	}

	reg := New()
	for _, m := range metas {
		if err := reg.Register(m); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	book, _ := reg.Metadata("Book")
	if book.PrimaryKey != "id" {
		t.Errorf("Expected primary key from primary flag, got %q", book.PrimaryKey)
	}
	if p := book.Properties["author"]; p.Kind != ManyToOne || p.Target != "Author" {
		t.Errorf("unexpected author descriptor %+v", p)
	}
	if p := book.Properties["tags"]; p.Kind != ManyToMany || !p.Owner {
		t.Errorf("unexpected tags descriptor %+v", p)
	}

	author, _ := reg.Metadata("Author")
	rules := author.Properties["name"].Rules
	if len(rules) != 1 || rules[0].Expr != "len(value) < 50" {
		t.Errorf("unexpected rules %+v", rules)
	}
}

func TestLoadYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "unknown kind", src: "entities:\n  - name: X\n    properties:\n      - name: a\n        kind: sideways\n"},
		{name: "unknown field", src: "entities:\n  - name: X\n    colour: red\n"},
		{name: "duplicate property", src: "entities:\n  - name: X\n    properties:\n      - name: a\n      - name: a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadYAML(strings.NewReader(tt.src)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestParseReferenceKind(t *testing.T) {
	for input, want := range map[string]ReferenceKind{
		"":            Scalar,
		"m2o":         ManyToOne,
		"MANY_TO_ONE": ManyToOne,
		"m:n":         ManyToMany,
		"1:m":         OneToMany,
	} {
		got, err := ParseReferenceKind(input)
		if err != nil || got != want {
			t.Errorf("ParseReferenceKind(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
	if _, err := ParseReferenceKind("bogus"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}
