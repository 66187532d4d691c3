package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/jmgilman/go/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-projectclocks/internal/config"
	"github.com/goliatone/go-projectclocks/internal/database"
	"github.com/goliatone/go-projectclocks/pkg/di"
	"github.com/goliatone/go-projectclocks/projectclocks"
	"github.com/goliatone/go-projectclocks/store/bunstore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		want    zapcore.Level
		wantErr bool
	}{
		{"production info", config.LogConfig{Level: "info"}, zapcore.InfoLevel, false},
		{"development debug", config.LogConfig{Level: "debug", Development: true}, zapcore.DebugLevel, false},
		{"unknown level", config.LogConfig{Level: "loud"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := newLogger(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("newLogger() error = %v", err)
			}
			if !logger.Core().Enabled(tt.want) {
				t.Errorf("level %s not enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
				t.Errorf("level below %s enabled", tt.want)
			}
		})
	}
}

func TestContainerSettings(t *testing.T) {
	cfg, err := config.Load(config.New())
	if err != nil {
		t.Fatal(err)
	}

	settings := containerSettings(cfg, zap.NewNop(), nil)
	if settings.QueryCache != nil || settings.Breaker != nil {
		t.Errorf("defaults should leave query cache and breaker off: %+v", settings)
	}

	cfg.Cache.Query.Enabled = true
	cfg.Cache.Query.TTL = time.Second
	cfg.Breaker.Enabled = true
	cfg.Breaker.ConsecutiveFailures = 3

	settings = containerSettings(cfg, zap.NewNop(), nil)
	if settings.QueryCache == nil || settings.QueryCache.TTL != time.Second {
		t.Errorf("QueryCache = %+v", settings.QueryCache)
	}
	if settings.Breaker == nil || settings.Breaker.ConsecutiveFailures != 3 {
		t.Errorf("Breaker = %+v", settings.Breaker)
	}
}

func TestCommands(t *testing.T) {
	for _, name := range []string{"serve", "migrate"} {
		c, _, err := rootCmd.Find([]string{name})
		if err != nil || c.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestStoresFor(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:cmd_stores_for?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := bunstore.CreateSchema(ctx, db, projectclocks.Tables()...); err != nil {
		t.Fatal(err)
	}

	for _, backend := range []string{config.StoreBun, config.StoreRepository} {
		t.Run(backend, func(t *testing.T) {
			stores, err := storesFor(config.DatabaseConfig{Store: backend}, db)
			if err != nil {
				t.Fatalf("storesFor() error = %v", err)
			}

			switch backend {
			case config.StoreBun:
				if _, ok := stores.Clients.(*bunstore.Store[int, projectclocks.Client]); !ok {
					t.Errorf("Clients store = %T", stores.Clients)
				}
			case config.StoreRepository:
				if _, ok := stores.Clients.(*bunstore.RepositoryStore[int, projectclocks.Client]); !ok {
					t.Errorf("Clients store = %T", stores.Clients)
				}
			}

			c, err := di.NewContainer(stores, di.Settings{})
			if err != nil {
				t.Fatal(err)
			}
			created, err := c.Roles.Create(ctx, &projectclocks.Role{GroupID: 1})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if _, err := c.Roles.Retrieve(ctx, created.ID); err != nil {
				t.Errorf("Retrieve() error = %v", err)
			}
		})
	}

	_, err = storesFor(config.DatabaseConfig{Store: "gorm"}, db)
	if errors.GetCode(err) != errors.CodeInvalidConfig {
		t.Errorf("storesFor(gorm) code = %s, want %s", errors.GetCode(err), errors.CodeInvalidConfig)
	}
}
