/*
Package registry manages entity metadata for the change-set engine.

Every entity type is described once by an EntityMetadata: its type name, the
storage collection, the primary-key property and one PropertyDescriptor per
property (scalar, m:1, m:n or 1:m, with owner/target for relationships).

Registration from struct tags:

	type Book struct {
	    entity.Base
	    ID     int64                    `orm:"id,pk"`
	    Title  string                   `orm:"title,required"`
	    Author entity.Ref[*Author]      `orm:"author"`
	    Tags   *entity.Collection[*Tag] `orm:"tags,owner,inverse=books"`
	}

	registry.RegisterEntity[Book]("books")

Registration from YAML, see LoadYAML:

	reg := registry.New()
	if err := reg.LoadFile("entities.yaml"); err != nil {
	    return err
	}

The registry follows an init-once, read-many lifecycle: populate it during
initialization, run Check, then Seal it. Lookups of unknown types fail with a
ConfigurationError.
*/
package registry
