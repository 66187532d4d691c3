package repositorycache

import (
	"github.com/jmgilman/go/errors"
)

// Sentinel errors returned (wrapped) by CachedRepository. Use errors.Is to
// test for them and errors.GetCode to map them to a transport status.
var (
	// ErrInvalidEntity rejects a nil or invalid entity before any store call.
	ErrInvalidEntity = errors.New(errors.CodeInvalidInput, "invalid entity")

	// ErrIDMismatch rejects an update whose entity identifier differs from
	// the requested one, before any store call.
	ErrIDMismatch = errors.New(errors.CodeInvalidInput, "entity identifier does not match request identifier")

	// ErrNotFound means the identifier is absent: from the mirror for reads,
	// from the store for deletes.
	ErrNotFound = errors.New(errors.CodeNotFound, "entity not found")

	// ErrNotCreated means the insert did not affect exactly one row.
	ErrNotCreated = errors.New(errors.CodeDatabase, "entity was not created")

	// ErrNotUpdated means the update did not affect exactly one row.
	ErrNotUpdated = errors.New(errors.CodeDatabase, "entity was not updated")

	// ErrNotDeleted means the row was found but removing it did not affect
	// exactly one row.
	ErrNotDeleted = errors.New(errors.CodeConflict, "entity was found but could not be deleted")
)
