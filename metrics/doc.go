/*
Package metrics exposes Prometheus collectors for the unit of work.

	unitofwork_changesets_total{entity, outcome}
	unitofwork_commit_duration_seconds{result}

Outcomes are insert, update, noop, invalid and error. Build one Recorder per
registry and hand it to the computer and unit of work with WithMetrics.
*/
package metrics
