package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmgilman/go/errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
)

// Repository is the part of a cached repository the HTTP layer drives.
type Repository[K store.ID, T any] interface {
	Name() string
	Key(entity T) K
	RetrieveAll(ctx context.Context) ([]T, error)
	Retrieve(ctx context.Context, id K) (T, error)
	Create(ctx context.Context, entity *T) (T, error)
	Update(ctx context.Context, id K, entity *T) (T, error)
	Delete(ctx context.Context, id K) error
	RetrieveBy(ctx context.Context, filter store.Filter[T]) ([]T, error)
}

var _ Repository[int, struct{}] = (*repositorycache.CachedRepository[int, struct{}])(nil)

// Resource serves CRUD endpoints for one entity type plus one
// GET /by-<index>/{id} route per secondary index.
type Resource[K store.ID, T any] struct {
	repo    Repository[K, T]
	indexes []store.Index[T]
	logger  *zap.Logger
}

func NewResource[K store.ID, T any](repo Repository[K, T], indexes []store.Index[T], logger *zap.Logger) *Resource[K, T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resource[K, T]{
		repo:    repo,
		indexes: indexes,
		logger:  logger.With(zap.String("resource", repo.Name())),
	}
}

// Mount registers a resource for repo under pattern.
func Mount[K store.ID, T any](r chi.Router, pattern string, repo Repository[K, T], indexes []store.Index[T], logger *zap.Logger) {
	r.Mount(pattern, NewResource(repo, indexes, logger).Routes())
}

func (res *Resource[K, T]) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", res.list)
	r.Post("/", res.create)
	r.Get("/{id}", res.get)
	r.Put("/{id}", res.update)
	r.Delete("/{id}", res.delete)
	for _, idx := range res.indexes {
		r.Get("/by-"+idx.Name+"/{id}", res.listBy(idx))
	}
	return r
}

func (res *Resource[K, T]) list(w http.ResponseWriter, r *http.Request) {
	rows, err := res.repo.RetrieveAll(r.Context())
	if err != nil {
		respondError(w, res.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (res *Resource[K, T]) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[K](r)
	if err != nil {
		respondError(w, res.logger, err)
		return
	}

	entity, err := res.repo.Retrieve(r.Context(), id)
	if err != nil {
		respondError(w, res.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, entity)
}

func (res *Resource[K, T]) create(w http.ResponseWriter, r *http.Request) {
	var entity T
	if err := decode(r, &entity); err != nil {
		respondError(w, res.logger, err)
		return
	}

	created, err := res.repo.Create(r.Context(), &entity)
	if err != nil {
		respondError(w, res.logger, err)
		return
	}

	location := fmt.Sprintf("%s/%d", strings.TrimSuffix(r.URL.Path, "/"), res.repo.Key(created))
	w.Header().Set("Location", location)
	respondJSON(w, http.StatusCreated, created)
}

func (res *Resource[K, T]) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[K](r)
	if err != nil {
		respondError(w, res.logger, err)
		return
	}

	var entity T
	if err := decode(r, &entity); err != nil {
		respondError(w, res.logger, err)
		return
	}

	if _, err := res.repo.Retrieve(r.Context(), id); err != nil {
		respondError(w, res.logger, err)
		return
	}

	if _, err := res.repo.Update(r.Context(), id, &entity); err != nil {
		respondError(w, res.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (res *Resource[K, T]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[K](r)
	if err != nil {
		respondError(w, res.logger, err)
		return
	}

	if _, err := res.repo.Retrieve(r.Context(), id); err != nil {
		respondError(w, res.logger, err)
		return
	}

	if err := res.repo.Delete(r.Context(), id); err != nil {
		respondError(w, res.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (res *Resource[K, T]) listBy(idx store.Index[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, res.logger, errors.Wrapf(err, errors.CodeInvalidInput, "invalid %s id", idx.Name))
			return
		}

		rows, err := res.repo.RetrieveBy(r.Context(), idx.Eq(value))
		if err != nil {
			respondError(w, res.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}

func pathID[K store.ID](r *http.Request) (K, error) {
	raw := chi.URLParam(r, "id")
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, errors.CodeInvalidInput, "invalid id %q", raw)
	}
	id := K(v)
	if int64(id) != v {
		return 0, errors.Newf(errors.CodeInvalidInput, "id %q is out of range", raw)
	}
	return id, nil
}

func decode(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "invalid request body")
	}
	return nil
}
