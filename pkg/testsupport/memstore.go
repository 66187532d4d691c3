package testsupport

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-projectclocks/store"
)

// Operation names used for call counting and fault injection.
const (
	OpInsert   = "Insert"
	OpUpdate   = "Update"
	OpFindByID = "FindByID"
	OpRemove   = "Remove"
	OpScanAll  = "ScanAll"
	OpScanBy   = "ScanBy"
)

// MemoryStore is an in-memory store.Store with auto-incrementing identifiers.
// It records every call and lets tests force errors or affected-row counts
// per operation.
type MemoryStore[K store.ID, T any] struct {
	mu       sync.Mutex
	rows     map[K]T
	next     K
	key      func(T) K
	setKey   func(*T, K)
	calls    map[string]int
	failures map[string]error
	affected map[string]int64

	// BeforeWrite, when set, runs after a write has been counted and before
	// it is applied. It is called without holding the store lock.
	BeforeWrite func(op string, id K)
}

var _ store.Store[int, struct{}] = (*MemoryStore[int, struct{}])(nil)

// NewMemoryStore creates an empty store. key reads an entity identifier and
// setKey assigns one on insert.
func NewMemoryStore[K store.ID, T any](key func(T) K, setKey func(*T, K)) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		rows:     make(map[K]T),
		key:      key,
		setKey:   setKey,
		calls:    make(map[string]int),
		failures: make(map[string]error),
		affected: make(map[string]int64),
	}
}

// Seed inserts rows directly, bypassing counters. Rows with a zero
// identifier get the next one.
func (m *MemoryStore[K, T]) Seed(rows ...T) []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		id := m.key(row)
		if id == 0 {
			m.next++
			id = m.next
			m.setKey(&row, id)
		} else if id > m.next {
			m.next = id
		}
		m.rows[id] = row
		out = append(out, row)
	}
	return out
}

// Drop deletes a row directly, as another process would.
func (m *MemoryStore[K, T]) Drop(id K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
}

// FailOn makes every subsequent call to op return err. A nil err clears it.
func (m *MemoryStore[K, T]) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// AffectOn makes the write op report n affected rows without touching data.
func (m *MemoryStore[K, T]) AffectOn(op string, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.affected[op] = n
}

// Calls returns how many times op was invoked.
func (m *MemoryStore[K, T]) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (m *MemoryStore[K, T]) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// Rows returns the stored rows ordered by identifier.
func (m *MemoryStore[K, T]) Rows() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(nil)
}

func (m *MemoryStore[K, T]) Insert(ctx context.Context, entity *T) (int64, error) {
	if err := m.begin(ctx, OpInsert); err != nil {
		return 0, err
	}
	m.hook(OpInsert, m.key(*entity))

	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.affected[OpInsert]; ok {
		return n, nil
	}
	m.next++
	m.setKey(entity, m.next)
	m.rows[m.next] = *entity
	return 1, nil
}

func (m *MemoryStore[K, T]) Update(ctx context.Context, entity *T) (int64, error) {
	if err := m.begin(ctx, OpUpdate); err != nil {
		return 0, err
	}
	id := m.key(*entity)
	m.hook(OpUpdate, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.affected[OpUpdate]; ok {
		return n, nil
	}
	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	m.rows[id] = *entity
	return 1, nil
}

func (m *MemoryStore[K, T]) FindByID(ctx context.Context, id K) (T, bool, error) {
	var zero T
	if err := m.begin(ctx, OpFindByID); err != nil {
		return zero, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	return row, ok, nil
}

func (m *MemoryStore[K, T]) Remove(ctx context.Context, entity *T) (int64, error) {
	if err := m.begin(ctx, OpRemove); err != nil {
		return 0, err
	}
	id := m.key(*entity)
	m.hook(OpRemove, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.affected[OpRemove]; ok {
		return n, nil
	}
	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

func (m *MemoryStore[K, T]) ScanAll(ctx context.Context) ([]T, error) {
	if err := m.begin(ctx, OpScanAll); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(nil), nil
}

func (m *MemoryStore[K, T]) ScanBy(ctx context.Context, filter store.Filter[T]) ([]T, error) {
	if err := m.begin(ctx, OpScanBy); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(filter.Matches), nil
}

// begin counts the call and fails it when ctx is done or a failure is
// injected for op.
func (m *MemoryStore[K, T]) begin(ctx context.Context, op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.failures[op]
}

func (m *MemoryStore[K, T]) hook(op string, id K) {
	if m.BeforeWrite != nil {
		m.BeforeWrite(op, id)
	}
}

func (m *MemoryStore[K, T]) sortedLocked(keep func(T) bool) []T {
	ids := make([]K, 0, len(m.rows))
	for id, row := range m.rows {
		if keep == nil || keep(row) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.rows[id])
	}
	return out
}
