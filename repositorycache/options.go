package repositorycache

import (
	"time"

	"github.com/goliatone/go-projectclocks/cache"
	"go.uber.org/zap"
)

type settings struct {
	name        string
	logger      *zap.Logger
	recorder    Recorder
	queryCache  *cache.Config
	keys        cache.KeySerializer
	warmTimeout time.Duration
}

// Option configures a CachedRepository.
type Option func(*settings)

// WithName sets the repository name used in logs, metrics and cache keys.
// Defaults to the snake_case entity type name.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the event recorder, e.g. a metrics collector.
func WithRecorder(r Recorder) Option {
	return func(s *settings) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithQueryCache enables the read-through cache for RetrieveBy results.
// Every successful write through the repository drops all cached query
// results; writes made by other processes are only picked up after cfg.TTL.
func WithQueryCache(cfg cache.Config) Option {
	return func(s *settings) { s.queryCache = &cfg }
}

// WithKeySerializer overrides the query cache key serializer.
func WithKeySerializer(keys cache.KeySerializer) Option {
	return func(s *settings) { s.keys = keys }
}

// WithWarmTimeout bounds the table scan run by Warm. Defaults to
// DefaultWarmTimeout.
func WithWarmTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.warmTimeout = d
		}
	}
}
