package cache

import "context"

// Mirror is an in-memory, concurrency-safe copy of a table keyed by
// identifier. Values are immutable snapshots: writers always store a new
// pointer, so pointer identity is enough to detect concurrent modification.
type Mirror[K comparable, V any] interface {
	// Load returns the current snapshot for key.
	Load(key K) (*V, bool)
	// AddOrUpdate stores value when key is absent. When key is present the
	// stored snapshot becomes combine(existing); the whole step is atomic
	// per key. It returns the snapshot that ended up stored.
	AddOrUpdate(key K, value *V, combine func(existing *V) *V) *V
	// CompareAndSwap replaces old with next only if old is still the stored
	// snapshot. It never creates a missing key.
	CompareAndSwap(key K, old, next *V) bool
	// Delete removes key and reports whether it was present.
	Delete(key K) bool
	// Values returns copies of every stored value in no particular order.
	Values() []V
	// Len returns the number of stored entries.
	Len() int
	// Reset replaces the whole content with values; used by warm-up only.
	Reset(values map[K]*V)
}

// FetchFn is the function signature QueryCache expects when fetching from the source of truth.
type FetchFn[T any] = func(ctx context.Context) (T, error)

// QueryCache is a read-through cache for secondary query results.
type QueryCache[T any] interface {
	GetOrFetch(ctx context.Context, key string, fetchFn FetchFn[T]) (T, error)
	// DeleteByPrefix drops every entry whose key starts with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}
