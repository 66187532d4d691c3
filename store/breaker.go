package store

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig configures the circuit breaker placed in front of a store.
type BreakerConfig struct {
	Name                string
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
	OnStateChange       func(name string, from, to gobreaker.State)
}

// Breaker decorates a Store with a circuit breaker. While the breaker is
// open every call fails fast with gobreaker.ErrOpenState; calls are never
// retried.
type Breaker[K ID, T any] struct {
	next Store[K, T]
	cb   *gobreaker.CircuitBreaker
}

var _ Store[int, struct{}] = (*Breaker[int, struct{}])(nil)

// WithBreaker wraps next in a circuit breaker configured by cfg.
func WithBreaker[K ID, T any](next Store[K, T], cfg BreakerConfig) *Breaker[K, T] {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: cfg.OnStateChange,
	}

	return &Breaker[K, T]{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// State returns the current breaker state.
func (b *Breaker[K, T]) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker[K, T]) Insert(ctx context.Context, entity *T) (int64, error) {
	return execute(b.cb, func() (int64, error) { return b.next.Insert(ctx, entity) })
}

func (b *Breaker[K, T]) Update(ctx context.Context, entity *T) (int64, error) {
	return execute(b.cb, func() (int64, error) { return b.next.Update(ctx, entity) })
}

type lookup[T any] struct {
	entity T
	found  bool
}

func (b *Breaker[K, T]) FindByID(ctx context.Context, id K) (T, bool, error) {
	res, err := execute(b.cb, func() (lookup[T], error) {
		entity, found, err := b.next.FindByID(ctx, id)
		return lookup[T]{entity: entity, found: found}, err
	})
	return res.entity, res.found, err
}

func (b *Breaker[K, T]) Remove(ctx context.Context, entity *T) (int64, error) {
	return execute(b.cb, func() (int64, error) { return b.next.Remove(ctx, entity) })
}

func (b *Breaker[K, T]) ScanAll(ctx context.Context) ([]T, error) {
	return execute(b.cb, func() ([]T, error) { return b.next.ScanAll(ctx) })
}

func (b *Breaker[K, T]) ScanBy(ctx context.Context, filter Filter[T]) ([]T, error) {
	return execute(b.cb, func() ([]T, error) { return b.next.ScanBy(ctx, filter) })
}

func execute[R any](cb *gobreaker.CircuitBreaker, fn func() (R, error)) (R, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero R
		if r, ok := out.(R); ok {
			return r, err
		}
		return zero, err
	}
	return out.(R), nil
}
