/*
Package ddb provides a DynamoDB-backed snapshot.Store.

Snapshots live in a table with a PK/SK key schema, one item per tracked
entity:

	PK         = "SNAPSHOT#<transient id>"
	SK         = "SNAPSHOT"
	Data       = map of property name to value
	SavedAt    = RFC 3339 timestamp of the last Put
	EntityType = "Snapshot"

Usage:

	store, err := ddb.NewSnapshotStore(ctx, accessKey, secretKey, "us-east-1", "snapshots")
	if err != nil {
	    return err
	}
	computer := unitofwork.NewComputer(reg, validator, store, identifier.NewMap())

Values come back with DynamoDB's types (float64 numbers, string times).
snapshot.Equal compares them with the live values by value, so a reloaded
snapshot does not produce spurious changes.
*/
package ddb
