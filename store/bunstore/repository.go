package bunstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-projectclocks/store"
)

// Records is the part of a go-repository-bun repository.Repository[*T]
// that RepositoryStore needs.
type Records[T any] interface {
	Create(ctx context.Context, record *T, criteria ...repository.InsertCriteria) (*T, error)
	Update(ctx context.Context, record *T, criteria ...repository.UpdateCriteria) (*T, error)
	Delete(ctx context.Context, record *T) error
	List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*T, int, error)
}

// NewRecords builds a go-repository-bun repository for the bun model T.
// Identifiers are autoincrement integers assigned by the database, so the
// uuid handlers are no-ops.
func NewRecords[T any](db *bun.DB) repository.Repository[*T] {
	return repository.NewRepository[*T](db, repository.ModelHandlers[*T]{
		NewRecord:     func() *T { return new(T) },
		GetID:         func(*T) uuid.UUID { return uuid.Nil },
		SetID:         func(*T, uuid.UUID) {},
		GetIdentifier: func() string { return DefaultPrimaryKey },
	})
}

// RepositoryStore adapts a go-repository-bun repository to store.Store.
// The repository API reports success or failure rather than row counts, so
// Update and Remove look the row up first and report zero affected rows
// when it is gone.
type RepositoryStore[K store.ID, T any] struct {
	repo       Records[T]
	key        func(T) K
	pk         string
	isNotFound func(error) bool
}

var _ store.Store[int, struct{}] = (*RepositoryStore[int, struct{}])(nil)

// FromRepository wraps repo. key reads the identifier of an entity.
// isNotFound recognises the repository's not found error in addition to
// sql.ErrNoRows; it may be nil.
func FromRepository[K store.ID, T any](repo Records[T], key func(T) K, isNotFound func(error) bool, opts ...Option) *RepositoryStore[K, T] {
	o := options{pk: DefaultPrimaryKey}
	for _, opt := range opts {
		opt(&o)
	}
	return &RepositoryStore[K, T]{repo: repo, key: key, pk: o.pk, isNotFound: isNotFound}
}

// FromDB wraps a repository built with NewRecords on db.
func FromDB[K store.ID, T any](db *bun.DB, key func(T) K, opts ...Option) *RepositoryStore[K, T] {
	return FromRepository[K, T](NewRecords[T](db), key, nil, opts...)
}

func (r *RepositoryStore[K, T]) Insert(ctx context.Context, entity *T) (int64, error) {
	created, err := r.repo.Create(ctx, entity)
	if err != nil {
		return 0, err
	}
	if created != nil {
		*entity = *created
	}
	return 1, nil
}

func (r *RepositoryStore[K, T]) Update(ctx context.Context, entity *T) (int64, error) {
	if ok, err := r.exists(ctx, r.key(*entity)); !ok || err != nil {
		return 0, err
	}

	updated, err := r.repo.Update(ctx, entity)
	if r.notFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if updated != nil {
		*entity = *updated
	}
	return 1, nil
}

// FindByID lists with a primary key filter so that a missing row is an
// empty result rather than a repository specific error.
func (r *RepositoryStore[K, T]) FindByID(ctx context.Context, id K) (T, bool, error) {
	var zero T
	rows, err := r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(r.pk), int64(id)).Limit(1)
	})
	if err != nil {
		return zero, false, err
	}
	if len(rows) == 0 {
		return zero, false, nil
	}
	return rows[0], true, nil
}

func (r *RepositoryStore[K, T]) Remove(ctx context.Context, entity *T) (int64, error) {
	if ok, err := r.exists(ctx, r.key(*entity)); !ok || err != nil {
		return 0, err
	}

	err := r.repo.Delete(ctx, entity)
	if r.notFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func (r *RepositoryStore[K, T]) ScanAll(ctx context.Context) ([]T, error) {
	return r.list(ctx, r.orderByPK)
}

func (r *RepositoryStore[K, T]) ScanBy(ctx context.Context, filter store.Filter[T]) ([]T, error) {
	return r.list(ctx, r.orderByPK, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(filter.Column()), filter.Value())
	})
}

func (r *RepositoryStore[K, T]) exists(ctx context.Context, id K) (bool, error) {
	_, found, err := r.FindByID(ctx, id)
	return found, err
}

func (r *RepositoryStore[K, T]) orderByPK(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("?TableAlias.? ASC", bun.Ident(r.pk))
}

func (r *RepositoryStore[K, T]) list(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, error) {
	records, _, err := r.repo.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *RepositoryStore[K, T]) notFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	return r.isNotFound != nil && r.isNotFound(err)
}
