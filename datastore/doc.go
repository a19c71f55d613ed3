/*
Package datastore holds write engines for unit-of-work commits.

A write engine implements unitofwork.Writer:

	type Writer interface {
	    Insert(ctx context.Context, cs *unitofwork.ChangeSet) (any, error)
	    Update(ctx context.Context, cs *unitofwork.ChangeSet) error
	}

Router dispatches change sets by collection name, so each collection can be
backed by its own engine:

	router := datastore.NewRouter()
	_ = router.Register("books", booksWriter)
	router.SetDefault(mock.NewWriter())
	err := uow.Commit(ctx, router)

Implementations:
  - mock: in-memory write engine with sequential keys and placeholder substitution
*/
package datastore
