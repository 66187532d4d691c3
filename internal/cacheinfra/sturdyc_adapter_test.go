package cacheinfra

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 10000 {
		t.Errorf("expected Capacity to be 10000, got %d", cfg.Capacity)
	}

	if cfg.NumShards != 64 {
		t.Errorf("expected NumShards to be 64, got %d", cfg.NumShards)
	}

	if cfg.TTL != 5*time.Second {
		t.Errorf("expected TTL to be 5 seconds, got %v", cfg.TTL)
	}

	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
		field     string
	}{
		{name: "valid default config", mutate: func(c *Config) {}},
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, wantError: true, field: "Capacity"},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, wantError: true, field: "NumShards"},
		{name: "more shards than capacity", mutate: func(c *Config) { c.Capacity = 10; c.NumShards = 20 }, wantError: true, field: "NumShards"},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, wantError: true, field: "TTL"},
		{name: "eviction too low", mutate: func(c *Config) { c.EvictionPercentage = 0 }, wantError: true, field: "EvictionPercentage"},
		{name: "eviction too high", mutate: func(c *Config) { c.EvictionPercentage = 101 }, wantError: true, field: "EvictionPercentage"},
		{name: "negative eviction interval", mutate: func(c *Config) { c.EvictionInterval = -time.Second }, wantError: true, field: "EvictionInterval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()

			if !tt.wantError {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	cfg := DefaultConfig()
	if got := len(cfg.ToSturdycOptions()); got != 0 {
		t.Errorf("expected no options by default, got %d", got)
	}

	cfg.EvictionInterval = time.Second
	if got := len(cfg.ToSturdycOptions()); got != 1 {
		t.Errorf("expected 1 option with eviction interval, got %d", got)
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	want := "config error in field TTL: must be greater than 0"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestNewSturdycService(t *testing.T) {
	svc, err := NewSturdycService[[]string](DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil || svc.client == nil {
		t.Fatal("expected initialised service")
	}

	bad := DefaultConfig()
	bad.TTL = 0
	if _, err := NewSturdycService[[]string](bad); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSturdycService_GetOrFetch(t *testing.T) {
	svc, err := NewSturdycService[[]string](DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	var calls int32
	fetch := func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{"a"}, nil
	}

	for i := 0; i < 5; i++ {
		got, err := svc.GetOrFetch(ctx, "clients::RetrieveBy::group_id=1", fetch)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0] != "a" {
			t.Fatalf("unexpected result: %v", got)
		}
	}

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected a single fetch, got %d", calls)
	}
}

func TestSturdycService_GetOrFetch_CoalescesConcurrentMisses(t *testing.T) {
	svc, err := NewSturdycService[int](DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := svc.GetOrFetch(ctx, "k", fetch); err != nil || v != 7 {
				t.Errorf("unexpected result %d %v", v, err)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected concurrent misses to share one fetch, got %d", got)
	}
}

func TestSturdycService_DeleteByPrefixSingleKey(t *testing.T) {
	svc, _ := NewSturdycService[int](DefaultConfig())
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	svc.GetOrFetch(ctx, "clients::RetrieveBy::0::group_id=1", fetch)
	svc.GetOrFetch(ctx, "clients::RetrieveBy::0::group_id=2", fetch)
	if err := svc.DeleteByPrefix(ctx, "clients::RetrieveBy::0::group_id=1"); err != nil {
		t.Fatalf("delete by prefix: %v", err)
	}
	if svc.Size() != 1 {
		t.Errorf("expected 1 entry left, got %d", svc.Size())
	}
	got, _ := svc.GetOrFetch(ctx, "clients::RetrieveBy::0::group_id=1", fetch)
	if got != 3 {
		t.Errorf("expected refetch after delete, got %d", got)
	}
}

func TestSturdycService_DeleteByPrefix(t *testing.T) {
	svc, _ := NewSturdycService[string](DefaultConfig())
	ctx := context.Background()

	keys := []string{"users::RetrieveBy::a", "users::RetrieveBy::b", "roles::RetrieveBy::a"}
	for _, k := range keys {
		key := k
		svc.GetOrFetch(ctx, key, func(ctx context.Context) (string, error) { return key, nil })
	}
	if svc.Size() != 3 {
		t.Fatalf("expected 3 entries, got %d", svc.Size())
	}

	if err := svc.DeleteByPrefix(ctx, "users::"); err != nil {
		t.Fatalf("delete by prefix: %v", err)
	}

	if svc.Size() != 1 {
		t.Fatalf("expected 1 entry left, got %d", svc.Size())
	}
	for _, k := range svc.client.ScanKeys() {
		if strings.HasPrefix(k, "users::") {
			t.Errorf("key %q should have been removed", k)
		}
	}
}
