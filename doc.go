/*
Package unitofwork computes the change sets an ORM flush has to write.

For every tracked entity the Computer serializes its current state, compares
it with the snapshot taken when the entity was last loaded or written, and
produces a ChangeSet: the full serialization for a new entity, only the
changed properties for a known one, or nothing when the entity is unchanged.
Relationship values are resolved to primary keys, or to placeholders for
targets that are not yet persisted, so a whole object graph can be written
in one pass.

The library follows a metadata → compute → write workflow:
  - Metadata: register entity types with the registry package, from struct
    tags or a YAML file
  - Compute: track entities in a UnitOfWork and compute their change sets
  - Write: hand each change set to a Writer, which assigns keys and resolves
    placeholders as inserts complete

Key Features:
  - Snapshot diffing with value equality across storage round trips
  - Many-to-one and many-to-many resolution with write-once collections
  - Declarative validation with expr and CEL rules
  - Memory and DynamoDB snapshot stores
  - Prometheus metrics and structured logging with zap
  - Mock writer for tests

Basic Usage:

	reg := registry.New()
	meta, _ := registry.FromStruct[Book]("books")
	reg.MustRegister(meta)
	reg.Seal()

	computer := unitofwork.NewComputer(reg, validation.New(),
		snapshot.NewMemoryStore(), identifier.NewMap(),
		unitofwork.WithLogger(logger))

	uow := unitofwork.NewUnitOfWork(computer)
	_ = uow.Persist(book)
	err := uow.Commit(ctx, writer)
*/
package unitofwork
