package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-projectclocks/internal/config"
	"github.com/goliatone/go-projectclocks/internal/database"
	"github.com/goliatone/go-projectclocks/internal/httpapi"
	"github.com/goliatone/go-projectclocks/internal/metrics"
	"github.com/goliatone/go-projectclocks/pkg/di"
	"github.com/goliatone/go-projectclocks/projectclocks"
	"github.com/goliatone/go-projectclocks/repositorycache"
	"github.com/goliatone/go-projectclocks/store"
	"github.com/goliatone/go-projectclocks/store/bunstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Open the database, warm every entity cache and serve the REST API until interrupted.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :5002)")
	v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.CodeDatabase, "close database")
		}
	}()

	if cfg.Database.Migrate {
		if err := bunstore.CreateSchema(ctx, db, projectclocks.Tables()...); err != nil {
			return err
		}
	}

	collector := metrics.NewCollector(cfg.Metrics.Namespace)
	stores, err := storesFor(cfg.Database, db)
	if err != nil {
		return err
	}
	container, err := di.NewContainer(stores, containerSettings(cfg, logger, collector))
	if err != nil {
		return err
	}
	if err := container.Warm(ctx); err != nil {
		logger.Warn("starting with cold repositories", zap.Error(err))
	}

	router := httpapi.NewRouter(httpapi.Options{
		Logger:      logger,
		Metrics:     collector,
		Health:      db,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	container.Mount(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("store", cfg.Database.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return errors.Wrapf(err, errors.CodeUnavailable, "listen on %s", cfg.Server.Addr)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "shutdown")
	}
	return nil
}

func storesFor(cfg config.DatabaseConfig, db *bun.DB) (di.Stores, error) {
	switch cfg.Store {
	case config.StoreBun:
		return di.BunStores(db), nil
	case config.StoreRepository:
		return di.RepositoryStores(db), nil
	}
	return di.Stores{}, errors.Newf(errors.CodeInvalidConfig, "database.store %q is not supported", cfg.Store)
}

func containerSettings(cfg config.Config, logger *zap.Logger, rec repositorycache.Recorder) di.Settings {
	settings := di.Settings{Logger: logger, Recorder: rec}
	if cfg.Cache.Query.Enabled {
		qc := cfg.Cache.Query.Cache()
		settings.QueryCache = &qc
	}
	if cfg.Breaker.Enabled {
		settings.Breaker = &store.BreakerConfig{
			MaxRequests:         cfg.Breaker.MaxRequests,
			Interval:            cfg.Breaker.Interval,
			Timeout:             cfg.Breaker.Timeout,
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
		}
	}
	return settings
}
