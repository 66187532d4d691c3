package repositorycache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jmgilman/go/errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-projectclocks/cache"
	"github.com/goliatone/go-projectclocks/store"
)

// Store operation names reported to the Recorder.
const (
	OpInsert   = "insert"
	OpUpdate   = "update"
	OpFindByID = "find_by_id"
	OpRemove   = "remove"
	OpScanAll  = "scan_all"
	OpScanBy   = "scan_by"
)

// DefaultWarmTimeout bounds the table scan run by Warm.
const DefaultWarmTimeout = time.Minute

// Cloner is implemented by entities that hold pointer fields. The
// repository keeps and hands out clones so that callers never share memory
// with the mirror or the query cache.
type Cloner[T any] interface {
	Clone() T
}

// CachedRepository is the single in-process access point for one entity
// type. Reads are served from an in-memory mirror of the table; writes go to
// the store first and are mirrored only after the store reports exactly one
// affected row.
//
// Construct one per entity type and share it for the life of the process.
type CachedRepository[K store.ID, T any] struct {
	name   string
	store  store.Store[K, T]
	key    func(T) K
	mirror cache.Mirror[K, T]
	query  cache.QueryCache[[]T]
	keys   cache.KeySerializer
	logger *zap.Logger
	rec    Recorder

	warmMu      sync.Mutex
	warmed      atomic.Bool
	warmTimeout time.Duration

	// gen is bumped by every write and is part of each query cache key, so
	// a fetch that started before a write can only fill a stale key.
	gen atomic.Uint64

	hits        atomic.Int64
	misses      atomic.Int64
	divergences atomic.Int64
}

// New creates a repository over s. key extracts the store assigned
// identifier from an entity. The mirror is empty until the first operation
// (or an explicit Warm) loads the whole table.
func New[K store.ID, T any](s store.Store[K, T], key func(T) K, opts ...Option) (*CachedRepository[K, T], error) {
	cfg := settings{
		name:        entityName[T](),
		logger:      zap.NewNop(),
		recorder:    nopRecorder{},
		warmTimeout: DefaultWarmTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.keys == nil {
		cfg.keys = cache.NewNamespacedKeySerializer(cfg.name)
	}

	r := &CachedRepository[K, T]{
		name:        cfg.name,
		store:       s,
		key:         key,
		mirror:      cache.NewMirror[K, T](),
		keys:        cfg.keys,
		logger:      cfg.logger.With(zap.String("repository", cfg.name)),
		rec:         cfg.recorder,
		warmTimeout: cfg.warmTimeout,
	}

	if cfg.queryCache != nil {
		qc, err := cache.NewQueryCache[[]T](*cfg.queryCache)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "%s query cache", cfg.name)
		}
		r.query = qc
	}

	return r, nil
}

// Name returns the repository name.
func (r *CachedRepository[K, T]) Name() string { return r.name }

// Key returns the identifier of entity.
func (r *CachedRepository[K, T]) Key(entity T) K { return r.key(entity) }

// Len returns the number of mirrored entities.
func (r *CachedRepository[K, T]) Len() int { return r.mirror.Len() }

// Stats returns the repository counters.
func (r *CachedRepository[K, T]) Stats() Stats {
	return Stats{
		Hits:        r.hits.Load(),
		Misses:      r.misses.Load(),
		Divergences: r.divergences.Load(),
		Size:        r.mirror.Len(),
		Warmed:      r.warmed.Load(),
	}
}

// Warm loads the whole table into the mirror. It runs the scan at most once:
// concurrent callers wait for the first scan and see its outcome, and a
// failed scan leaves the repository cold so a later call can try again.
// Callers never observe a partially loaded mirror.
//
// The scan ignores ctx cancellation and is bounded by the warm timeout
// instead.
func (r *CachedRepository[K, T]) Warm(ctx context.Context) error {
	if r.warmed.Load() {
		return nil
	}

	r.warmMu.Lock()
	defer r.warmMu.Unlock()

	if r.warmed.Load() {
		return nil
	}

	scanCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.warmTimeout)
	defer cancel()

	start := time.Now()
	rows, err := r.store.ScanAll(scanCtx)
	r.rec.StoreOp(r.name, OpScanAll, time.Since(start), err)
	if err != nil {
		r.logger.Error("cache warm-up failed", zap.Error(err))
		return errors.Wrapf(err, errors.CodeDatabase, "warm %s cache", r.name)
	}

	snapshot := make(map[K]*T, len(rows))
	for i := range rows {
		row := clone(rows[i])
		snapshot[r.key(row)] = &row
	}
	r.mirror.Reset(snapshot)
	r.warmed.Store(true)

	took := time.Since(start)
	r.rec.Warmed(r.name, len(snapshot), took)
	r.logger.Info("cache warmed", zap.Int("rows", len(snapshot)), zap.Duration("took", took))
	return nil
}

// Create inserts entity and mirrors a clone of it under the identifier
// assigned by the store. entity is updated in place with that identifier.
func (r *CachedRepository[K, T]) Create(ctx context.Context, entity *T) (T, error) {
	var zero T
	if entity == nil {
		return zero, errors.Wrap(ErrInvalidEntity, errors.CodeInvalidInput, "create: entity is required")
	}
	if err := r.validate("create", entity); err != nil {
		return zero, err
	}
	if err := r.Warm(ctx); err != nil {
		return zero, err
	}

	affected, err := r.insert(ctx, entity)
	if err != nil {
		return zero, r.storeFailure(OpInsert, err)
	}
	if affected != 1 {
		return zero, errors.Wrapf(ErrNotCreated, errors.CodeDatabase, "insert into %s affected %d rows", r.name, affected)
	}

	created := clone(*entity)
	id := r.key(created)
	snap := &created

	replaced := false
	r.mirror.AddOrUpdate(id, snap, func(existing *T) *T {
		// the store just assigned id, so whatever we held for it is stale
		replaced = true
		return snap
	})
	if replaced {
		r.diverged(OpInsert, id, "replaced stale mirror entry")
	}

	r.invalidateQueries(ctx)
	return clone(created), nil
}

// RetrieveAll returns every mirrored entity in no particular order. After
// warm-up it never touches the store. On a cold repository it runs the
// warm-up first and returns its error, wrapped with CodeDatabase, when the
// table scan fails.
func (r *CachedRepository[K, T]) RetrieveAll(ctx context.Context) ([]T, error) {
	if err := r.Warm(ctx); err != nil {
		return nil, err
	}
	return cloneAll(r.mirror.Values()), nil
}

// Retrieve returns the mirrored entity for id. A miss is authoritative and
// returns ErrNotFound; there is no fallback to the store.
func (r *CachedRepository[K, T]) Retrieve(ctx context.Context, id K) (T, error) {
	var zero T
	if err := r.Warm(ctx); err != nil {
		return zero, err
	}

	snap, ok := r.mirror.Load(id)
	if !ok {
		r.misses.Add(1)
		r.rec.CacheMiss(r.name)
		return zero, r.notFound(id)
	}

	r.hits.Add(1)
	r.rec.CacheHit(r.name)
	return clone(*snap), nil
}

// Update writes entity to the store and then swaps the mirrored snapshot
// read before the write. If another writer changed the snapshot in between,
// the swap is skipped and recorded as a divergence; the call still succeeds
// because the store holds the new state.
func (r *CachedRepository[K, T]) Update(ctx context.Context, id K, entity *T) (T, error) {
	var zero T
	if entity == nil {
		return zero, errors.Wrap(ErrInvalidEntity, errors.CodeInvalidInput, "update: entity is required")
	}
	if got := r.key(*entity); got != id {
		return zero, errors.Wrapf(ErrIDMismatch, errors.CodeInvalidInput, "update %s %v: entity has id %v", r.name, id, got)
	}
	if err := r.validate("update", entity); err != nil {
		return zero, err
	}
	if err := r.Warm(ctx); err != nil {
		return zero, err
	}

	prev, cached := r.mirror.Load(id)

	start := time.Now()
	affected, err := r.store.Update(ctx, entity)
	r.rec.StoreOp(r.name, OpUpdate, time.Since(start), err)
	if err != nil {
		return zero, r.storeFailure(OpUpdate, err)
	}
	if affected != 1 {
		return zero, errors.Wrapf(ErrNotUpdated, errors.CodeDatabase, "update %s %v affected %d rows", r.name, id, affected)
	}

	updated := clone(*entity)
	switch {
	case !cached:
		r.diverged(OpUpdate, id, "updated row is not mirrored")
	case !r.mirror.CompareAndSwap(id, prev, &updated):
		r.diverged(OpUpdate, id, "lost compare-and-swap")
	}

	r.invalidateQueries(ctx)
	return clone(updated), nil
}

// Delete looks the row up in the store, removes it and then drops it from
// the mirror. It returns ErrNotFound when the store has no such row and
// ErrNotDeleted when the row exists but the delete did not take.
func (r *CachedRepository[K, T]) Delete(ctx context.Context, id K) error {
	if err := r.Warm(ctx); err != nil {
		return err
	}

	start := time.Now()
	existing, found, err := r.store.FindByID(ctx, id)
	r.rec.StoreOp(r.name, OpFindByID, time.Since(start), err)
	if err != nil {
		return r.storeFailure(OpFindByID, err)
	}
	if !found {
		return r.notFound(id)
	}

	start = time.Now()
	affected, err := r.store.Remove(ctx, &existing)
	r.rec.StoreOp(r.name, OpRemove, time.Since(start), err)
	if err != nil {
		return r.storeFailure(OpRemove, err)
	}
	if affected != 1 {
		return errors.Wrapf(ErrNotDeleted, errors.CodeConflict, "delete %s %v affected %d rows", r.name, id, affected)
	}

	if !r.mirror.Delete(id) {
		r.logger.Debug("deleted row was not mirrored", zap.Any("id", id))
	}

	r.invalidateQueries(ctx)
	return nil
}

// RetrieveBy runs a secondary-index query against the store. The mirror is
// neither consulted nor updated. When a query cache is configured results
// are served from it unless ctx was marked with WithFreshRead.
func (r *CachedRepository[K, T]) RetrieveBy(ctx context.Context, filter store.Filter[T]) ([]T, error) {
	if r.query == nil || freshReadFromContext(ctx) {
		return r.scanBy(ctx, filter)
	}

	key := r.keys.SerializeKey("RetrieveBy", r.gen.Load(), filter)
	rows, err := r.query.GetOrFetch(ctx, key, func(ctx context.Context) ([]T, error) {
		return r.scanBy(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return cloneAll(rows), nil
}

func (r *CachedRepository[K, T]) scanBy(ctx context.Context, filter store.Filter[T]) ([]T, error) {
	start := time.Now()
	rows, err := r.store.ScanBy(ctx, filter)
	r.rec.StoreOp(r.name, OpScanBy, time.Since(start), err)
	if err != nil {
		return nil, r.storeFailure(OpScanBy, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func (r *CachedRepository[K, T]) insert(ctx context.Context, entity *T) (int64, error) {
	start := time.Now()
	affected, err := r.store.Insert(ctx, entity)
	r.rec.StoreOp(r.name, OpInsert, time.Since(start), err)
	return affected, err
}

func (r *CachedRepository[K, T]) validate(op string, entity *T) error {
	v, ok := any(entity).(validation.Validatable)
	if !ok {
		return nil
	}
	err := v.Validate()
	if err == nil {
		return nil
	}
	return errors.WrapWithContext(ErrInvalidEntity, errors.CodeInvalidInput,
		fmt.Sprintf("%s %s: %v", op, r.name, err),
		map[string]interface{}{"fields": err})
}

func (r *CachedRepository[K, T]) notFound(id K) error {
	return errors.Wrapf(ErrNotFound, errors.CodeNotFound, "%s %v", r.name, id)
}

func (r *CachedRepository[K, T]) storeFailure(op string, err error) error {
	r.logger.Error("store operation failed", zap.String("op", op), zap.Error(err))
	return errors.Wrapf(err, errors.CodeDatabase, "%s %s", r.name, op)
}

func (r *CachedRepository[K, T]) diverged(op string, id K, reason string) {
	r.divergences.Add(1)
	r.rec.Divergence(r.name, op)
	r.logger.Warn("cache diverged from store",
		zap.String("op", op),
		zap.Any("id", id),
		zap.String("reason", reason),
	)
}

func (r *CachedRepository[K, T]) invalidateQueries(ctx context.Context) {
	if r.query == nil {
		return
	}
	r.gen.Add(1)
	if err := r.query.DeleteByPrefix(ctx, r.keys.SerializeKey("RetrieveBy")); err != nil {
		r.logger.Warn("query cache invalidation failed", zap.Error(err))
	}
}

func clone[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}

func cloneAll[T any](rows []T) []T {
	out := make([]T, len(rows))
	for i := range rows {
		out[i] = clone(rows[i])
	}
	return out
}
