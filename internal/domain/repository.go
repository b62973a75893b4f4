package domain

import "context"

// CollectionStore is the per-collection persistence contract. Every
// mutating call persists the whole collection before returning; a success
// is durably visible to a subsequent List.
type CollectionStore interface {
	// List returns all records in insertion order. It reflects every
	// mutation that completed before the call began.
	List(ctx context.Context) ([]Record, error)

	// Create assigns id, timestamp, and the collection's default status
	// (unless fields supplies one), appends the record, and persists.
	Create(ctx context.Context, fields Record) (Record, error)

	// Update shallow-merges patch over the record with the given id.
	// Fields absent from patch are retained; id and timestamp are never
	// altered. Returns ErrNotFound when the id is absent.
	Update(ctx context.Context, id string, patch Record) (Record, error)

	// Delete permanently removes the record and returns it for
	// confirmation display. Returns ErrNotFound when the id is absent.
	Delete(ctx context.Context, id string) (Record, error)
}

// Store hands out the per-collection stores. Implementations keep the
// three collections fully independent; no call ever touches more than one.
type Store interface {
	Collection(c Collection) CollectionStore
}
