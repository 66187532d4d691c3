// Package config loads the service configuration from defaults, an
// optional config file and PROJECTCLOCKS_ environment variables.
package config

import (
	"strings"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-projectclocks/cache"
)

// EnvPrefix prefixes every environment variable, e.g. PROJECTCLOCKS_SERVER_ADDR.
const EnvPrefix = "PROJECTCLOCKS"

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store backends. StoreBun queries through bun models directly and reports
// real affected row counts; StoreRepository goes through go-repository-bun.
const (
	StoreBun        = "bun"
	StoreRepository = "repository"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Breaker  BreakerConfig  `mapstructure:"breaker"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	Migrate bool   `mapstructure:"migrate"`
	Store   string `mapstructure:"store"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type CacheConfig struct {
	Query QueryCacheConfig `mapstructure:"query"`
}

// QueryCacheConfig configures the optional cache in front of secondary
// index queries.
type QueryCacheConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	Capacity           int           `mapstructure:"capacity"`
	Shards             int           `mapstructure:"shards"`
	TTL                time.Duration `mapstructure:"ttl"`
	EvictionPercentage int           `mapstructure:"eviction_percentage"`
}

// Cache converts the settings to a cache.Config.
func (q QueryCacheConfig) Cache() cache.Config {
	return cache.Config{
		Capacity:           q.Capacity,
		NumShards:          q.Shards,
		TTL:                q.TTL,
		EvictionPercentage: q.EvictionPercentage,
	}
}

// BreakerConfig configures the circuit breaker in front of every store.
type BreakerConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	MaxRequests         uint32        `mapstructure:"max_requests"`
	Interval            time.Duration `mapstructure:"interval"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every key so environment variables are picked up
// by Unmarshal even without a config file.
func SetDefaults(v *viper.Viper) {
	qc := cache.DefaultConfig()

	v.SetDefault("server.addr", ":5002")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "file:projectclocks.db?cache=shared&_fk=1")
	v.SetDefault("database.migrate", true)
	v.SetDefault("database.store", StoreBun)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("cache.query.enabled", false)
	v.SetDefault("cache.query.capacity", qc.Capacity)
	v.SetDefault("cache.query.shards", qc.NumShards)
	v.SetDefault("cache.query.ttl", qc.TTL)
	v.SetDefault("cache.query.eviction_percentage", qc.EvictionPercentage)
	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", time.Duration(0))
	v.SetDefault("breaker.timeout", 30*time.Second)
	v.SetDefault("breaker.consecutive_failures", 5)
	v.SetDefault("metrics.namespace", "projectclocks")
}

// Load reads the config file (when one is set on v), decodes everything
// into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return cfg, errors.Wrapf(err, errors.CodeInvalidConfig, "read config file %s", v.ConfigFileUsed())
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, errors.CodeInvalidConfig, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot enforce through types.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.CodeInvalidConfig, "server.addr is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New(errors.CodeInvalidConfig, "server.shutdown_timeout must be greater than 0")
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return errors.Newf(errors.CodeInvalidConfig, "database.driver %q is not supported", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New(errors.CodeInvalidConfig, "database.dsn is required")
	}
	switch c.Database.Store {
	case StoreBun, StoreRepository:
	default:
		return errors.Newf(errors.CodeInvalidConfig, "database.store %q is not supported", c.Database.Store)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, errors.CodeInvalidConfig, "log.level %q", c.Log.Level)
	}

	if c.Cache.Query.Enabled {
		if err := c.Cache.Query.Cache().Validate(); err != nil {
			return errors.Wrap(err, errors.CodeInvalidConfig, "cache.query")
		}
	}

	if c.Breaker.Enabled && c.Breaker.Timeout <= 0 {
		return errors.New(errors.CodeInvalidConfig, "breaker.timeout must be greater than 0")
	}

	if c.Metrics.Namespace == "" {
		return errors.New(errors.CodeInvalidConfig, "metrics.namespace is required")
	}
	return nil
}
