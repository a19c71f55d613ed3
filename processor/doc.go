/*
Package processor checks entity metadata files.

A metadata file declares entity types in YAML:

	entities:
	  - name: Book
	    collection: books
	    primaryKey: id
	    properties:
	      - name: id
	      - name: title
	        required: true
	      - name: tags
	        kind: m:n
	        target: Tag
	        inverse: books
	        owner: true

Run registers every declared type into a fresh registry, cross-checks
relationship targets, inverses and many-to-many ownership, and prints one
summary row per entity. Owning sides are marked with "*".
*/
package processor
