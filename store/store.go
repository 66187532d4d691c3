package store

import "context"

// ID is the set of identifier types a store may assign.
type ID interface {
	~int | ~int32 | ~int64
}

// Store is the durable source of truth for a single entity type.
//
// Write operations report the number of affected rows; callers treat anything
// other than exactly one as a failed write. Insert writes the store assigned
// identifier back into the entity. No operation is assumed idempotent and
// implementations must not retry internally.
type Store[K ID, T any] interface {
	Insert(ctx context.Context, entity *T) (int64, error)
	Update(ctx context.Context, entity *T) (int64, error)
	FindByID(ctx context.Context, id K) (T, bool, error)
	Remove(ctx context.Context, entity *T) (int64, error)
	ScanAll(ctx context.Context) ([]T, error)
	ScanBy(ctx context.Context, filter Filter[T]) ([]T, error)
}
