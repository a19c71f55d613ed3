/*
Package entity defines what the change-set engine needs from a live object.

An entity embeds Base for its transient identifier and exposes properties by
name, either by implementing Accessor or through exported struct fields:

	type Book struct {
	    entity.Base
	    ID     int64                    `orm:"id,pk"`
	    Title  string                   `orm:"title,required"`
	    Author entity.Ref[*Author]      `orm:"author"`
	    Tags   *entity.Collection[*Tag] `orm:"tags,owner"`
	}

	b := &Book{Base: entity.NewBase(), Tags: entity.NewCollection[*Tag]()}

Ref distinguishes an unassigned relationship from one explicitly set to
nothing. Collection marks itself dirty on every membership change; the engine
reads the members and clears the flag when it writes the association.
*/
package entity
