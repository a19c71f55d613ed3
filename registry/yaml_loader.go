/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Entities []yamlEntity `yaml:"entities"`
}

type yamlEntity struct {
	Name       string               `yaml:"name"`
	Collection string               `yaml:"collection"`
	PrimaryKey string               `yaml:"primaryKey"`
	Properties []PropertyDescriptor `yaml:"properties"`
}

// LoadYAML decodes entity metadata declarations:
//
//	entities:
//	  - name: Book
//	    collection: books
//	    primaryKey: id
//	    properties:
//	      - name: id
//	      - name: title
//	        required: true
//	        rules:
//	          - name: length
//	            expr: len(value) <= 200
//	      - name: author
//	        kind: m:1
//	        target: Author
func LoadYAML(r io.Reader) ([]*EntityMetadata, error) {
	var file yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	out := make([]*EntityMetadata, 0, len(file.Entities))
	for _, e := range file.Entities {
		meta := &EntityMetadata{
			Name:       e.Name,
			Collection: e.Collection,
			PrimaryKey: e.PrimaryKey,
			Properties: make(map[string]*PropertyDescriptor, len(e.Properties)),
		}
		for i := range e.Properties {
			p := e.Properties[i]
			if p.Name == "" {
				return nil, fmt.Errorf("entity %q: property %d has no name", e.Name, i)
			}
			if _, dup := meta.Properties[p.Name]; dup {
				return nil, fmt.Errorf("entity %q: property %q declared twice", e.Name, p.Name)
			}
			meta.Properties[p.Name] = &p
		}
		out = append(out, meta)
	}
	return out, nil
}

// LoadFile reads a YAML metadata file and registers every entity into r.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer f.Close()

	metas, err := LoadYAML(f)
	if err != nil {
		return err
	}
	for _, meta := range metas {
		if err := r.Register(meta); err != nil {
			return err
		}
	}
	return nil
}
