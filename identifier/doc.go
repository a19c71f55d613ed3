/*
Package identifier implements deferred primary keys for entities that have not
been inserted yet.

When an entity being flushed references another entity that has no primary key,
the reference is written as a *Placeholder obtained from a Map. All referrers of
the same entity share one placeholder:

	ids := identifier.NewMap()
	p1 := ids.GetOrCreate(author.TransientID())
	p2 := ids.GetOrCreate(author.TransientID()) // p1 == p2

After the write engine inserts the referenced entity it resolves the token, and
dependent rows substitute the concrete key:

	if err := ids.Resolve(author.TransientID(), 42); err != nil {
	    return err
	}
	key, _ := p1.Value() // 42

Reset clears the map between flush cycles.
*/
package identifier
