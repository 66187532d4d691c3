package cacheinfra

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// xsyncMirror keeps immutable entity snapshots in an xsync.MapOf. Every
// conditional write goes through MapOf.Compute, which runs the callback under
// the bucket lock for that key, so add-or-update and compare-and-swap are
// atomic per key without a global lock.
type xsyncMirror[K comparable, V any] struct {
	m *xsync.MapOf[K, *V]
}

// NewXsyncMirror creates an empty mirror.
func NewXsyncMirror[K comparable, V any]() *xsyncMirror[K, V] {
	return &xsyncMirror[K, V]{m: xsync.NewMapOf[K, *V]()}
}

func (x *xsyncMirror[K, V]) Load(key K) (*V, bool) {
	return x.m.Load(key)
}

func (x *xsyncMirror[K, V]) AddOrUpdate(key K, value *V, combine func(existing *V) *V) *V {
	stored, _ := x.m.Compute(key, func(existing *V, loaded bool) (*V, bool) {
		if !loaded {
			return value, false
		}
		return combine(existing), false
	})
	return stored
}

func (x *xsyncMirror[K, V]) CompareAndSwap(key K, old, next *V) bool {
	swapped := false
	x.m.Compute(key, func(existing *V, loaded bool) (*V, bool) {
		if !loaded {
			// delete=true on a missing key leaves the map untouched
			return nil, true
		}
		if existing != old {
			return existing, false
		}
		swapped = true
		return next, false
	})
	return swapped
}

func (x *xsyncMirror[K, V]) Delete(key K) bool {
	_, loaded := x.m.LoadAndDelete(key)
	return loaded
}

func (x *xsyncMirror[K, V]) Values() []V {
	out := make([]V, 0, x.m.Size())
	x.m.Range(func(_ K, v *V) bool {
		out = append(out, *v)
		return true
	})
	return out
}

func (x *xsyncMirror[K, V]) Len() int {
	return x.m.Size()
}

func (x *xsyncMirror[K, V]) Reset(values map[K]*V) {
	x.m.Clear()
	for k, v := range values {
		x.m.Store(k, v)
	}
}
