// Package cache defines the cache contracts used by cached repositories and
// their default implementations.
//
// # Overview
//
// The package exports three interfaces:
//
//   - Mirror: an in-memory copy of a whole table keyed by identifier, with
//     atomic add-or-update and compare-and-swap per key
//   - QueryCache: a read-through cache for secondary query results
//   - KeySerializer: builds stable cache keys from method names and arguments
//
// NewMirror returns the xsync backed mirror and NewQueryCache the sturdyc
// backed query cache. Both implementations live in internal/cacheinfra.
//
// # Mirror Snapshots
//
// A Mirror stores pointers to values that are never modified after they are
// stored. Writers always allocate a new snapshot, so CompareAndSwap can use
// pointer identity to detect that another writer got there first:
//
//	m := cache.NewMirror[int, Client]()
//	prev, _ := m.Load(42)
//	next := &Client{ID: 42, Name: "Acme Corp"}
//	if !m.CompareAndSwap(42, prev, next) {
//		// someone else replaced the entry after prev was read
//	}
//
// CompareAndSwap never creates a missing key. AddOrUpdate does, and when the
// key is already present it stores whatever the combine function derives
// from the existing snapshot.
//
// # Query Cache
//
// The query cache coalesces concurrent misses for the same key into one
// fetch and keeps results for Config.TTL. Results are only invalidated by
// writes made through the same repository:
//
//	qc, err := cache.NewQueryCache[[]Client](cache.DefaultConfig())
//	rows, err := qc.GetOrFetch(ctx, key, func(ctx context.Context) ([]Client, error) {
//		return store.ScanBy(ctx, filter)
//	})
//	_ = qc.DeleteByPrefix(ctx, "clients::RetrieveBy")
//
// Errors returned by the fetch function are not cached.
//
// # Key Serialization
//
// Keys are the method name followed by the serialized arguments, joined
// with KeySeparator. A namespaced serializer puts the namespace first so
// that every key of a repository shares one prefix:
//
//	keys := cache.NewNamespacedKeySerializer("clients")
//	keys.SerializeKey("RetrieveBy", filter) // "clients::RetrieveBy::group_id=7"
//
// Arguments implementing fmt.Stringer use their String method. Basic types
// are formatted with %v, slices element by element and anything else falls
// back to JSON.
package cache
