/*
Package errors provides semantic error types for the change-set engine.

Each error scenario has a sentinel that typed errors match through errors.Is,
plus helper functions for the common checks.

Common Errors:

	var (
	    ErrNotFound             = errors.New("not found")
	    ErrAlreadyExists        = errors.New("already exists")
	    ErrConfiguration        = errors.New("configuration error")
	    ErrInvalidInput         = errors.New("invalid input")
	    ErrIdentifierResolution = errors.New("identifier resolution failed")
	)

Usage:

	cs, err := computer.ComputeChangeSet(ctx, book)
	if err != nil {
	    switch {
	    case errors.IsValidationError(err):
	        // skip this entity, keep flushing the others
	    case errors.IsConfigurationError(err), errors.IsIdentifierResolution(err):
	        // setup defect, abort the pass
	    }
	}

ConfigurationError and IdentifierResolutionError are fatal and never retried.
ValidationError is recoverable at the level of "skip this entity".
*/
package errors
