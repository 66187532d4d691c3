package bunstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/store"
)

// DefaultPrimaryKey is the identifier column used when none is configured.
const DefaultPrimaryKey = "id"

// Store implements store.Store on a bun model. T must be a bun model struct
// whose primary key is an autoincrement integer column.
type Store[K store.ID, T any] struct {
	db bun.IDB
	pk string
}

var _ store.Store[int, struct{}] = (*Store[int, struct{}])(nil)

// Option configures a Store.
type Option func(*options)

type options struct {
	pk string
}

// WithPrimaryKey sets the identifier column. Defaults to "id".
func WithPrimaryKey(column string) Option {
	return func(o *options) {
		if column != "" {
			o.pk = column
		}
	}
}

// New creates a store for T on db. db can be a *bun.DB or a bun.Tx.
func New[K store.ID, T any](db bun.IDB, opts ...Option) *Store[K, T] {
	o := options{pk: DefaultPrimaryKey}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[K, T]{db: db, pk: o.pk}
}

// Insert inserts entity and scans the generated identifier back into it.
func (s *Store[K, T]) Insert(ctx context.Context, entity *T) (int64, error) {
	res, err := s.db.NewInsert().Model(entity).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store[K, T]) Update(ctx context.Context, entity *T) (int64, error) {
	res, err := s.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store[K, T]) FindByID(ctx context.Context, id K) (T, bool, error) {
	var row T
	err := s.db.NewSelect().
		Model(&row).
		Where("?TableAlias.? = ?", bun.Ident(s.pk), int64(id)).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return row, true, nil
}

func (s *Store[K, T]) Remove(ctx context.Context, entity *T) (int64, error) {
	res, err := s.db.NewDelete().Model(entity).WherePK().Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store[K, T]) ScanAll(ctx context.Context) ([]T, error) {
	return s.scan(ctx, nil)
}

func (s *Store[K, T]) ScanBy(ctx context.Context, filter store.Filter[T]) ([]T, error) {
	return s.scan(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(filter.Column()), filter.Value())
	})
}

func (s *Store[K, T]) scan(ctx context.Context, where func(*bun.SelectQuery) *bun.SelectQuery) ([]T, error) {
	rows := make([]T, 0)
	q := s.db.NewSelect().Model(&rows).OrderExpr("?TableAlias.? ASC", bun.Ident(s.pk))
	if where != nil {
		q = where(q)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}
