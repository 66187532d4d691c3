package cache

import (
	"time"

	"github.com/goliatone/go-projectclocks/internal/cacheinfra"
)

// Config exposes query cache configuration options for consumers of the cache package.
type Config struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewQueryCache constructs the default read-through cache for secondary
// query results of type T.
func NewQueryCache[T any](cfg Config) (QueryCache[T], error) {
	svc, err := cacheinfra.NewSturdycService[T](cfg.toInternal())
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// NewMirror constructs the default entity mirror.
func NewMirror[K comparable, V any]() Mirror[K, V] {
	return cacheinfra.NewXsyncMirror[K, V]()
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
