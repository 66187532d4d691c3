// Package repositorycache provides a generic cache-aside repository over a
// store.Store.
//
// # Overview
//
// A CachedRepository keeps a whole-table, in-memory mirror of one entity
// type. The mirror is loaded by a single full scan the first time the
// repository is used (or when Warm is called) and from then on serves every
// point read and list read without touching the store. Writes always go to
// the store first; the mirror is changed only after the store reports exactly
// one affected row.
//
// # Basic Usage
//
//	s := bunstore.New[int, projectclocks.Client](db)
//	clients, err := repositorycache.New(s, projectclocks.ClientPK,
//		repositorycache.WithLogger(logger),
//	)
//
//	created, err := clients.Create(ctx, &projectclocks.Client{Name: "Acme"})
//	got, err := clients.Retrieve(ctx, created.ID)
//	inGroup, err := clients.RetrieveBy(ctx, projectclocks.ClientByGroup.Eq(7))
//
// Build exactly one repository per entity type and share it; two
// repositories over the same table hold two independent mirrors.
//
// # Read Paths
//
//   - Retrieve and RetrieveAll read the mirror only. A miss is reported as
//     ErrNotFound even if another process has since inserted the row.
//   - RetrieveBy runs a secondary-index query against the store. Enable
//     WithQueryCache to serve repeated queries from a short lived sturdyc
//     cache; WithFreshRead bypasses it for a single call. Query cache keys
//     carry a write generation, so a fetch that overlaps a write is never
//     served after that write returns.
//
// Values handed in and out are copies. Entities with pointer fields should
// implement Cloner; otherwise the copies share what those fields point to.
//
// # Write Paths
//
//   - Create inserts, then adds the new snapshot under the store assigned
//     identifier. A stale entry for the same identifier is replaced.
//   - Update rejects a mismatched identifier before any store call, writes,
//     then compare-and-swaps the snapshot read before the write. Losing the
//     swap to a concurrent writer is not an error; it is logged and counted
//     as a divergence.
//   - Delete looks the row up in the store, removes it, then drops it from
//     the mirror.
//
// # Errors
//
// Failures are jmgilman/go/errors PlatformErrors wrapping one of the package
// sentinels (or the store error), so both errors.Is and errors.GetCode work:
//
//	ErrInvalidEntity, ErrIDMismatch   INVALID_INPUT
//	ErrNotFound                       NOT_FOUND
//	ErrNotCreated, ErrNotUpdated      DATABASE_ERROR
//	ErrNotDeleted                     CONFLICT
//	store errors                      DATABASE_ERROR
//
// Entities implementing ozzo-validation's Validatable are validated before
// create and update; field errors are attached to the error context under
// "fields".
//
// # Observability
//
// Pass WithLogger for zap logging and WithRecorder to receive cache hits,
// misses, store operation timings, divergences and warm-up events (see
// internal/metrics for the Prometheus implementation). Stats returns the
// same counters for a single repository.
package repositorycache
