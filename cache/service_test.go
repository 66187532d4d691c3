package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestConfig_ValidateRejectsZeroTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero TTL")
	}
}

func TestNewQueryCache_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 0
	svc, err := NewQueryCache[[]int](cfg)
	if err == nil {
		t.Fatal("expected error for zero capacity")
	}
	if svc != nil {
		t.Errorf("expected nil service on error, got %T", svc)
	}
}

func TestNewQueryCache_ReadThrough(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = time.Minute
	svc, err := NewQueryCache[[]int](cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	calls := 0
	fetch := func(ctx context.Context) ([]int, error) {
		calls++
		return []int{1, 2}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := svc.GetOrFetch(ctx, "q", fetch)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(got) != 2 {
			t.Fatalf("unexpected result %v", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 fetch, got %d", calls)
	}

	if err := svc.DeleteByPrefix(ctx, "q"); err != nil {
		t.Fatalf("delete by prefix: %v", err)
	}
	if _, err := svc.GetOrFetch(ctx, "q", fetch); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected refetch after invalidation, got %d calls", calls)
	}
}

func TestNewQueryCache_ErrorsAreNotCached(t *testing.T) {
	svc, err := NewQueryCache[[]int](DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	boom := errors.New("boom")
	ctx := context.Background()
	_, err = svc.GetOrFetch(ctx, "q", func(ctx context.Context) ([]int, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := svc.GetOrFetch(ctx, "q", func(ctx context.Context) ([]int, error) { return []int{3}, nil })
	if err != nil || len(got) != 1 {
		t.Fatalf("expected fresh fetch after error, got %v %v", got, err)
	}
}

func TestNewMirror_Contract(t *testing.T) {
	m := NewMirror[int, string]()
	a, b := "a", "b"

	stored := m.AddOrUpdate(1, &a, func(existing *string) *string { return &b })
	if stored != &a {
		t.Fatal("expected first add to store the given value")
	}
	stored = m.AddOrUpdate(1, &b, func(existing *string) *string {
		if existing != &a {
			t.Errorf("combine should receive the existing snapshot")
		}
		return &b
	})
	if stored != &b || m.Len() != 1 {
		t.Fatalf("expected update through combine, len=%d", m.Len())
	}
}
