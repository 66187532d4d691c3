package store

import "fmt"

// Index describes a secondary attribute of T that can be queried by equality,
// typically a foreign key column such as group_id.
type Index[T any] struct {
	// Name is the short, URL friendly name of the index (e.g. "group").
	Name string
	// Column is the backing column compared in SQL.
	Column string
	// Key extracts the indexed value. It returns false when the value is NULL.
	Key func(T) (int64, bool)
}

// Eq builds a filter matching rows whose indexed value equals v.
func (i Index[T]) Eq(v int64) Filter[T] {
	return Filter[T]{index: i, value: v}
}

// Filter is an equality predicate over an Index. It can be rendered as SQL
// through Column/Value or evaluated in memory with Matches.
type Filter[T any] struct {
	index Index[T]
	value int64
}

func (f Filter[T]) Name() string   { return f.index.Name }
func (f Filter[T]) Column() string { return f.index.Column }
func (f Filter[T]) Value() int64   { return f.value }

// Matches reports whether entity satisfies the filter. NULL never matches.
func (f Filter[T]) Matches(entity T) bool {
	if f.index.Key == nil {
		return false
	}
	v, ok := f.index.Key(entity)
	return ok && v == f.value
}

func (f Filter[T]) String() string {
	return fmt.Sprintf("%s=%d", f.index.Column, f.value)
}
